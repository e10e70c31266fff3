// sw-ingest - Solar wind measurement ingestion into ClickHouse
//
// Loads OMNI archives (raw .asc or converted .dat) and ACE/Wind cdaweb
// CSVs into a ClickHouse
// measurements table over the native protocol. Archive fill values are
// inserted as-is so the table mirrors the source; gap repair happens at
// export time where the cleaning parameters are known.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/sw-ingest ./cmd/sw-ingest

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ClickHouse/ch-go"
	"github.com/ClickHouse/ch-go/proto"

	"github.com/heliolab/solarwind-apps/internal/ace"
	"github.com/heliolab/solarwind-apps/internal/common"
	"github.com/heliolab/solarwind-apps/internal/omniweb"
	"github.com/heliolab/solarwind-apps/internal/series"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

// flushThreshold bounds batch memory; one month of 1-minute data is ~44640 rows.
const flushThreshold = 100_000

// MeasurementBatch holds column data for native insert
type MeasurementBatch struct {
	Time       *proto.ColDateTime
	Bx         *proto.ColFloat64
	By         *proto.ColFloat64
	Bz         *proto.ColFloat64
	Vx         *proto.ColFloat64
	Vy         *proto.ColFloat64
	Vz         *proto.ColFloat64
	Density    *proto.ColFloat64
	Temp       *proto.ColFloat64
	SourceFile *proto.ColStr
}

func NewMeasurementBatch() *MeasurementBatch {
	return &MeasurementBatch{
		Time:       new(proto.ColDateTime),
		Bx:         new(proto.ColFloat64),
		By:         new(proto.ColFloat64),
		Bz:         new(proto.ColFloat64),
		Vx:         new(proto.ColFloat64),
		Vy:         new(proto.ColFloat64),
		Vz:         new(proto.ColFloat64),
		Density:    new(proto.ColFloat64),
		Temp:       new(proto.ColFloat64),
		SourceFile: new(proto.ColStr),
	}
}

func (b *MeasurementBatch) Reset() {
	b.Time.Reset()
	b.Bx.Reset()
	b.By.Reset()
	b.Bz.Reset()
	b.Vx.Reset()
	b.Vy.Reset()
	b.Vz.Reset()
	b.Density.Reset()
	b.Temp.Reset()
	b.SourceFile.Reset()
}

func (b *MeasurementBatch) Len() int {
	return b.Time.Rows()
}

func (b *MeasurementBatch) Input() proto.Input {
	return proto.Input{
		{Name: "time", Data: b.Time},
		{Name: "bx", Data: b.Bx},
		{Name: "by", Data: b.By},
		{Name: "bz", Data: b.Bz},
		{Name: "vx", Data: b.Vx},
		{Name: "vy", Data: b.Vy},
		{Name: "vz", Data: b.Vz},
		{Name: "dens", Data: b.Density},
		{Name: "temp", Data: b.Temp},
		{Name: "source_file", Data: b.SourceFile},
	}
}

// AddTable appends every row of a parsed table to the batch.
func (b *MeasurementBatch) AddTable(t *series.Table, sourceFile string) {
	for i, ts := range t.Times {
		b.Time.Append(ts)
		b.Bx.Append(t.Column(series.Bx)[i])
		b.By.Append(t.Column(series.By)[i])
		b.Bz.Append(t.Column(series.Bz)[i])
		b.Vx.Append(t.Column(series.Vx)[i])
		b.Vy.Append(t.Column(series.Vy)[i])
		b.Vz.Append(t.Column(series.Vz)[i])
		b.Density.Append(t.Column(series.Density)[i])
		b.Temp.Append(t.Column(series.Temperature)[i])
		b.SourceFile.Append(sourceFile)
	}
}

func flushBatch(ctx context.Context, conn *ch.Client, tableFQN string, batch *MeasurementBatch) error {
	if batch.Len() == 0 {
		return nil
	}

	query := fmt.Sprintf("INSERT INTO %s (time, bx, by, bz, vx, vy, vz, dens, temp, source_file) VALUES", tableFQN)
	err := conn.Do(ctx, ch.Query{
		Body:  query,
		Input: batch.Input(),
	})
	if err != nil {
		return err
	}
	batch.Reset()
	return nil
}

// detectFormat picks a parser from the file name: raw OMNI archives end in
// .asc, converted OMNI files in .dat, cdaweb exports in .csv.
func detectFormat(path string) (string, bool) {
	name := strings.ToLower(path)
	name = strings.TrimSuffix(name, ".gz")
	switch ext := filepath.Ext(name); ext {
	case ".asc", ".dat", ".csv":
		return ext[1:], true
	}
	return "", false
}

func parseFile(path, format string) (*series.Table, error) {
	f, err := omniweb.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case "asc":
		return omniweb.ReadASC(f, time.Time{}, time.Time{})
	case "csv":
		return ace.ReadCSV(f)
	}
	return omniweb.ReadDat(f)
}

func main() {
	cfg := common.DefaultConfig()

	chHost := flag.String("ch-host", fmt.Sprintf("%s:%d", cfg.ClickHouseHost, cfg.ClickHousePort), "ClickHouse address")
	chDB := flag.String("ch-db", cfg.ClickHouseDatabase, "ClickHouse database")
	chTable := flag.String("ch-table", "measurements_1min", "ClickHouse table")
	sourceDir := flag.String("source-dir", cfg.OMNIDataDir(), "Measurement file source directory")
	truncate := flag.Bool("truncate", false, "Truncate table before insert")
	silent := flag.Bool("silent", false, "Suppress periodic progress output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "sw-ingest v%s - Solar Wind Measurement Ingester\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [files...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ingests solar wind measurements into ClickHouse.\n\n")
		fmt.Fprintf(os.Stderr, "Supported formats:\n")
		fmt.Fprintf(os.Stderr, "  - Raw monthly OMNI archives (.asc, .asc.gz)\n")
		fmt.Fprintf(os.Stderr, "  - Converted OMNI minute data (.dat, .dat.gz)\n")
		fmt.Fprintf(os.Stderr, "  - ACE/Wind cdaweb CSV exports (.csv, .csv.gz)\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	log.Println("=========================================================")
	log.Printf("Solar Wind Ingest v%s", Version)
	log.Println("=========================================================")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nShutdown requested...")
		cancel()
	}()

	log.Printf("Connecting to ClickHouse at %s...", *chHost)
	conn, err := ch.Dial(ctx, ch.Options{
		Address:     *chHost,
		Database:    *chDB,
		User:        cfg.ClickHouseUser,
		Password:    cfg.ClickHousePassword,
		Compression: ch.CompressionLZ4,
	})
	if err != nil {
		log.Fatalf("ClickHouse connection failed: %v", err)
	}
	defer conn.Close()

	tableFQN := fmt.Sprintf("%s.%s", *chDB, *chTable)
	log.Printf("Table: %s", tableFQN)

	if *truncate {
		log.Printf("Truncating table %s...", tableFQN)
		if err := conn.Do(ctx, ch.Query{Body: fmt.Sprintf("TRUNCATE TABLE %s", tableFQN)}); err != nil {
			log.Printf("Truncate warning: %v", err)
		}
	}

	var files []string
	if len(flag.Args()) > 0 {
		files = flag.Args()
	} else {
		entries, err := os.ReadDir(*sourceDir)
		if err != nil {
			log.Fatalf("Cannot read source directory: %v", err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				files = append(files, filepath.Join(*sourceDir, e.Name()))
			}
		}
	}

	if len(files) == 0 {
		log.Fatal("No files to process")
	}

	log.Printf("Found %d file(s)", len(files))

	stats := common.NewStats()
	stats.SetSilent(*silent)
	stats.StartReporter()

	startTime := time.Now()
	batch := NewMeasurementBatch()

	for _, filePath := range files {
		if ctx.Err() != nil {
			break
		}

		format, ok := detectFormat(filePath)
		if !ok {
			log.Printf("[%s] Skipping (unknown format)", filepath.Base(filePath))
			continue
		}

		table, err := parseFile(filePath, format)
		if err != nil {
			log.Printf("[%s] Parse error: %v", filepath.Base(filePath), err)
			continue
		}

		batch.AddTable(table, filepath.Base(filePath))
		stats.AddRows(uint64(table.Len()))
		stats.AddFile()
		log.Printf("[%s] Parsed %d rows (%s format)", filepath.Base(filePath), table.Len(), format)

		if batch.Len() >= flushThreshold {
			if err := flushBatch(ctx, conn, tableFQN, batch); err != nil {
				stats.StopReporter()
				log.Fatalf("Insert error: %v", err)
			}
		}
	}

	if err := flushBatch(ctx, conn, tableFQN, batch); err != nil {
		stats.StopReporter()
		log.Fatalf("Insert error: %v", err)
	}

	stats.StopReporter()
	elapsed := time.Since(startTime)

	log.Println()
	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Total Rows:  %d", stats.Rows())
	log.Printf("Total Files: %d", stats.Files())
	log.Printf("Elapsed:     %v", elapsed.Round(time.Millisecond))
	log.Printf("Rate:        %.0f rows/sec", float64(stats.Rows())/elapsed.Seconds())
	log.Println("=========================================================")
}
