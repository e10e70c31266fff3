// omni-convert - Convert raw OMNI .asc archives to the simulator .dat layout
//
// Expands day-of-year timestamps to calendar fields and prepends the 3-line
// header the downstream tools expect. Data columns pass through untouched;
// run sw-clean afterwards to repair fill values.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/omni-convert ./cmd/omni-convert

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/heliolab/solarwind-apps/internal/omniweb"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "omni-convert v%s - OMNI Archive Converter\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s input.asc[.gz] output.dat\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Converts a raw monthly OMNI file to the calendar-timestamp\n")
		fmt.Fprintf(os.Stderr, ".dat layout read by sw-clean and the simulator.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	inPath, outPath := flag.Arg(0), flag.Arg(1)

	in, err := omniweb.Open(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open input: %v\n", err)
		os.Exit(1)
	}
	defer in.Close()

	tmpPath := outPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create output: %v\n", err)
		os.Exit(1)
	}

	convErr := omniweb.Convert(in, out)
	if cerr := out.Close(); convErr == nil {
		convErr = cerr
	}
	if convErr != nil {
		os.Remove(tmpPath)
		fmt.Fprintf(os.Stderr, "Error: convert failed: %v\n", convErr)
		os.Exit(1)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		fmt.Fprintf(os.Stderr, "Error: rename failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Converted %s -> %s\n", inPath, outPath)
}
