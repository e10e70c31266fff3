// sw-parquet - Columnar archive conversion for solar wind measurements
//
// Packs converted OMNI .dat files or ACE/Wind CSVs into Parquet for bulk
// storage, and unpacks Parquet archives back into the .dat layout the
// cleaning tools read. Direction is inferred from the input extension.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/sw-parquet ./cmd/sw-parquet

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/heliolab/solarwind-apps/internal/ace"
	"github.com/heliolab/solarwind-apps/internal/omniweb"
	"github.com/heliolab/solarwind-apps/internal/series"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

const readChunk = 1000

// Measurement matches the Parquet schema
type Measurement struct {
	Timestamp int64   `parquet:"timestamp"`
	Bx        float64 `parquet:"bx"`
	By        float64 `parquet:"by"`
	Bz        float64 `parquet:"bz"`
	Vx        float64 `parquet:"vx"`
	Vy        float64 `parquet:"vy"`
	Vz        float64 `parquet:"vz"`
	Density   float64 `parquet:"dens"`
	Temp      float64 `parquet:"temp"`
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "sw-parquet: "+format+"\n", args...)
	os.Exit(1)
}

func readTable(path string) (*series.Table, error) {
	f, err := omniweb.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(strings.ToLower(path), ".gz")
	if filepath.Ext(name) == ".csv" {
		return ace.ReadCSV(f)
	}
	return omniweb.ReadDat(f)
}

// pack writes a measurement table as a Parquet archive.
func pack(table *series.Table, outPath string) (int, error) {
	rows := make([]Measurement, table.Len())
	for i, ts := range table.Times {
		rows[i] = Measurement{
			Timestamp: ts.Unix(),
			Bx:        table.Column(series.Bx)[i],
			By:        table.Column(series.By)[i],
			Bz:        table.Column(series.Bz)[i],
			Vx:        table.Column(series.Vx)[i],
			Vy:        table.Column(series.Vy)[i],
			Vz:        table.Column(series.Vz)[i],
			Density:   table.Column(series.Density)[i],
			Temp:      table.Column(series.Temperature)[i],
		}
	}

	tmpPath := outPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, err
	}

	writer := parquet.NewGenericWriter[Measurement](f)
	if _, err := writer.Write(rows); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return 0, err
	}
	if err := writer.Close(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return 0, err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, err
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return 0, err
	}
	return len(rows), nil
}

// unpack reads a Parquet archive and writes the .dat layout.
func unpack(inPath, outPath string) (int, error) {
	f, err := os.Open(inPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return 0, err
	}

	tmpPath := outPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return 0, err
	}

	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "Unpacked from %s\n", filepath.Base(inPath))
	fmt.Fprintln(w, omniweb.DatColumns)
	fmt.Fprintln(w, "#START")

	reader := parquet.NewGenericReader[Measurement](pf)
	rows := make([]Measurement, readChunk)
	total := 0

	for {
		n, rerr := reader.Read(rows)
		for i := 0; i < n; i++ {
			m := rows[i]
			ts := time.Unix(m.Timestamp, 0).UTC()
			fmt.Fprintf(w, "%s 000 %g %g %g %g %g %g %g %g\n",
				ts.Format("2006 01 02 15 04 05"),
				m.Bx, m.By, m.Bz, m.Vx, m.Vy, m.Vz, m.Density, m.Temp)
			total++
		}
		if n == 0 || rerr != nil {
			break
		}
	}
	reader.Close()

	werr := w.Flush()
	if cerr := out.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmpPath)
		return 0, werr
	}
	if total == 0 {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("no rows in %s", inPath)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return 0, err
	}
	return total, nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "sw-parquet v%s - Measurement Archive Converter\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s input output\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Packs .dat/.csv measurement files into Parquet, or unpacks a .parquet\n")
		fmt.Fprintf(os.Stderr, "archive back into the .dat layout. Direction follows the input extension.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	inPath, outPath := flag.Arg(0), flag.Arg(1)

	var (
		rows int
		err  error
	)
	if filepath.Ext(strings.ToLower(inPath)) == ".parquet" {
		rows, err = unpack(inPath, outPath)
	} else {
		var table *series.Table
		table, err = readTable(inPath)
		if err == nil {
			rows, err = pack(table, outPath)
		}
	}
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Converted %d rows: %s -> %s\n", rows, inPath, outPath)
}
