// omni-download - Download monthly OMNI high-res solar wind files from spdf
//
// Fetches omni_minYYYYMM.asc files from
// https://spdf.gsfc.nasa.gov/pub/data/omni/high_res_omni/monthly_1min/
// for a month range. Downloads go to a temp file and are renamed into place
// so an interrupted transfer never leaves a partial archive. With -compress
// the archive is stored gzip-compressed (.asc.gz); the readers decompress
// transparently.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/omni-download ./cmd/omni-download

package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/heliolab/solarwind-apps/internal/common"
	"github.com/heliolab/solarwind-apps/internal/omniweb"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

func downloadMonth(year int, month time.Month, destDir string, timeout time.Duration, compress bool) (string, error) {
	url := omniweb.MonthlyURL(year, month)
	destName := omniweb.MonthlyFilename(year, month)
	if compress {
		destName += ".gz"
	}
	destPath := filepath.Join(destDir, destName)

	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		return "", fmt.Errorf("HTTP GET failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("create file failed: %w", err)
	}

	var n int64
	if compress {
		zw := gzip.NewWriter(f)
		n, err = io.Copy(zw, resp.Body)
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
	} else {
		n, err = io.Copy(f, resp.Body)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("download failed: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename failed: %w", err)
	}

	fmt.Printf("  Downloaded %s (%d bytes)\n", filepath.Base(destPath), n)
	return destPath, nil
}

func parseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("want YYYY-MM, got %q", s)
	}
	return t.Year(), t.Month(), nil
}

func main() {
	cfg := common.DefaultConfig()

	start := flag.String("start", "", "First month to download (YYYY-MM)")
	end := flag.String("end", "", "Last month to download (YYYY-MM, default same as -start)")
	destDir := flag.String("dest", cfg.OMNIDataDir(), "Destination directory")
	timeout := flag.Duration("timeout", 120*time.Second, "HTTP timeout per download")
	compress := flag.Bool("compress", false, "Store archives gzip-compressed")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "omni-download v%s - OMNI Solar Wind Downloader\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s -start YYYY-MM [-end YYYY-MM] [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Downloads monthly 1-minute OMNI files from %s\n\n", omniweb.BaseURL)
		flag.PrintDefaults()
	}

	flag.Parse()

	if *start == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *end == "" {
		*end = *start
	}

	startYear, startMonth, err := parseMonth(*start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: bad -start: %v\n", err)
		os.Exit(1)
	}
	endYear, endMonth, err := parseMonth(*end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: bad -end: %v\n", err)
		os.Exit(1)
	}

	first := time.Date(startYear, startMonth, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(endYear, endMonth, 1, 0, 0, 0, 0, time.UTC)
	if last.Before(first) {
		fmt.Fprintf(os.Stderr, "Error: -end is before -start\n")
		os.Exit(1)
	}

	fmt.Println("=========================================================")
	fmt.Printf("OMNI Download v%s\n", Version)
	fmt.Println("=========================================================")
	fmt.Printf("Range:       %s .. %s\n", *start, *end)
	fmt.Printf("Destination: %s\n", *destDir)
	fmt.Printf("Timeout:     %v\n", *timeout)
	fmt.Println()

	if err := os.MkdirAll(*destDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Cannot create directory: %v\n", err)
		os.Exit(1)
	}

	startTime := time.Now()
	downloaded := 0
	failed := 0

	for month := first; !month.After(last); month = month.AddDate(0, 1, 0) {
		fmt.Printf("[%s] Downloading %s...\n",
			month.Format("2006-01"), omniweb.MonthlyURL(month.Year(), month.Month()))
		if _, err := downloadMonth(month.Year(), month.Month(), *destDir, *timeout, *compress); err != nil {
			fmt.Printf("  ERROR: %v\n", err)
			failed++
		} else {
			downloaded++
		}
	}

	elapsed := time.Since(startTime)

	fmt.Println()
	fmt.Println("=========================================================")
	fmt.Println("Download Summary")
	fmt.Println("=========================================================")
	fmt.Printf("Downloaded: %d files\n", downloaded)
	fmt.Printf("Failed:     %d files\n", failed)
	fmt.Printf("Elapsed:    %v\n", elapsed.Round(time.Millisecond))
	fmt.Println("=========================================================")

	if failed > 0 {
		os.Exit(1)
	}
}
