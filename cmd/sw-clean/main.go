// sw-clean - Repair solar wind data and write simulator boundary conditions
//
// Reads a converted OMNI .dat file or an ACE/Wind cdaweb CSV, repairs
// measurement gaps (archive fill values interpolated between valid
// neighbors), optionally rejects multi-sigma outliers, and writes the
// fixed-width IMF.dat file the simulator reads. On any failure a one-line
// diagnostic is printed and no output file is left behind.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/sw-clean ./cmd/sw-clean

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/heliolab/solarwind-apps/internal/ace"
	"github.com/heliolab/solarwind-apps/internal/omniweb"
	"github.com/heliolab/solarwind-apps/internal/series"
	"github.com/heliolab/solarwind-apps/internal/swmf"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "sw-clean: "+format+"\n", args...)
	os.Exit(1)
}

func readTable(path string, format series.Format) (*series.Table, error) {
	in, err := omniweb.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	switch format {
	case series.FormatOMNI:
		return omniweb.ReadDat(in)
	case series.FormatACE:
		return ace.ReadCSV(in)
	}
	return nil, fmt.Errorf("unhandled format %v", format)
}

// writeFile writes through a temp file and renames into place so a failed
// clean never leaves a partial boundary-condition file.
func writeFile(path string, write func(*os.File) error) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	werr := write(f)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmpPath)
		return werr
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func main() {
	formatName := flag.String("format", "omni", "Source format: omni or ace")
	filtering := flag.Bool("filtering", false, "Reject multi-sigma outliers after gap repair")
	coarseness := flag.Float64("coarseness", 3, "Standard deviations defining an outlier")
	clean := flag.Bool("clean", true, "Repair archive fill values (disable only for pre-cleaned data)")
	gse := flag.Bool("gse", false, "Mark output as GSE coordinates instead of GSM")
	rbPath := flag.String("rb", "", "Also write a radiation-belt RB.SWIMF file to this path")
	source := flag.String("source", "", "Provenance line for the output header")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "sw-clean v%s - Solar Wind Gap Repair\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] input output\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Repairs gaps and outliers in solar wind data and writes the\n")
		fmt.Fprintf(os.Stderr, "simulator's fixed-width IMF.dat boundary-condition file.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	inPath, outPath := flag.Arg(0), flag.Arg(1)

	format, err := series.ParseFormat(*formatName)
	if err != nil {
		fatalf("%v", err)
	}
	set, err := series.Sentinels(format)
	if err != nil {
		fatalf("%v", err)
	}
	cfg := series.Config{Coarseness: *coarseness, Filtering: *filtering, Clean: *clean}
	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}

	table, err := readTable(inPath, format)
	if err != nil {
		fatalf("read %s: %v", inPath, err)
	}

	cleaned, err := series.CleanTable(table, set, cfg)
	if err != nil {
		fatalf("clean %s: %v", inPath, err)
	}

	header := swmf.Header{Source: *source, GSE: *gse}
	if header.Source == "" {
		switch format {
		case series.FormatOMNI:
			header.Source = "OMNI file downloaded from https://omniweb.gsfc.nasa.gov/"
		case series.FormatACE:
			header.Source = "CSV files downloaded from https://cdaweb.gsfc.nasa.gov/"
		}
	}

	if err := writeFile(outPath, func(f *os.File) error {
		return swmf.WriteIMF(f, cleaned, header)
	}); err != nil {
		fatalf("write %s: %v", outPath, err)
	}

	if *rbPath != "" {
		if err := writeFile(*rbPath, func(f *os.File) error {
			return swmf.WriteRB(f, cleaned)
		}); err != nil {
			fatalf("write %s: %v", *rbPath, err)
		}
	}

	fmt.Printf("Cleaned %d samples: %s -> %s\n", cleaned.Len(), inPath, outPath)
}
