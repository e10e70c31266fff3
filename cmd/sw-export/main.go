// sw-export - Export simulator boundary conditions from ClickHouse
//
// Queries a time range from the measurements table, repairs gaps and
// outliers, and writes the fixed-width IMF.dat file the simulator reads.
// The inverse of sw-ingest: rows go out of ClickHouse instead of in.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/sw-export ./cmd/sw-export

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/heliolab/solarwind-apps/internal/common"
	"github.com/heliolab/solarwind-apps/internal/series"
	"github.com/heliolab/solarwind-apps/internal/swmf"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

// timeLayouts accepted by the -start and -end flags.
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimeFlag(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q (want YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)", s)
}

func queryRange(ctx context.Context, conn driver.Conn, tableFQN string, from, to time.Time) (*series.Table, error) {
	query := fmt.Sprintf(
		"SELECT time, bx, by, bz, vx, vy, vz, dens, temp FROM %s WHERE time >= ? AND time < ? ORDER BY time",
		tableFQN)

	rows, err := conn.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	table := series.NewTable(0)
	for rows.Next() {
		var (
			ts                               time.Time
			bx, by, bz, vx, vy, vz, dens, tp float64
		)
		if err := rows.Scan(&ts, &bx, &by, &bz, &vx, &vy, &vz, &dens, &tp); err != nil {
			return nil, err
		}
		table.Append(ts, bx, by, bz, vx, vy, vz, dens, tp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("no rows in range %s .. %s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return table, nil
}

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
	cfg := common.DefaultConfig()

	chHost := flag.String("ch-host", fmt.Sprintf("%s:%d", cfg.ClickHouseHost, cfg.ClickHousePort), "ClickHouse address")
	chDB := flag.String("ch-db", cfg.ClickHouseDatabase, "ClickHouse database")
	chTable := flag.String("ch-table", "measurements_1min", "ClickHouse table")
	startStr := flag.String("start", "", "Range start (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS, required)")
	endStr := flag.String("end", "", "Range end, exclusive (required)")
	formatName := flag.String("format", "omni", "Sentinel set for gap repair: omni or ace")
	filtering := flag.Bool("filtering", false, "Reject multi-sigma outliers after gap repair")
	coarseness := flag.Float64("coarseness", 3, "Standard deviations defining an outlier")
	gse := flag.Bool("gse", false, "Mark output as GSE coordinates instead of GSM")
	rbPath := flag.String("rb", "", "Also write a radiation-belt RB.SWIMF file to this path")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "sw-export v%s - Boundary Condition Exporter\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] output\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Exports a time range of solar wind measurements from ClickHouse,\n")
		fmt.Fprintf(os.Stderr, "repairs gaps, and writes the simulator's IMF.dat file.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 || *startStr == "" || *endStr == "" {
		flag.Usage()
		os.Exit(1)
	}
	outPath := flag.Arg(0)

	from, err := parseTimeFlag(*startStr)
	if err != nil {
		log.Fatalf("Invalid -start: %v", err)
	}
	to, err := parseTimeFlag(*endStr)
	if err != nil {
		log.Fatalf("Invalid -end: %v", err)
	}
	if !from.Before(to) {
		log.Fatalf("Range start %s is not before end %s", *startStr, *endStr)
	}

	format, err := series.ParseFormat(*formatName)
	if err != nil {
		log.Fatalf("Invalid -format: %v", err)
	}
	set, err := series.Sentinels(format)
	if err != nil {
		log.Fatalf("Invalid -format: %v", err)
	}
	cleanCfg := series.Config{Coarseness: *coarseness, Filtering: *filtering, Clean: true}
	if err := cleanCfg.Validate(); err != nil {
		log.Fatalf("Invalid cleaning options: %v", err)
	}

	log.Println("=========================================================")
	log.Printf("Solar Wind Export v%s", Version)
	log.Println("=========================================================")
	log.Printf("Range: %s .. %s", from.Format(time.RFC3339), to.Format(time.RFC3339))

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
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{*chHost},
		Auth: clickhouse.Auth{
			Database: *chDB,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePassword,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		log.Fatalf("ClickHouse connection failed: %v", err)
	}
	defer conn.Close()

	if err := conn.Ping(ctx); err != nil {
		log.Fatalf("ClickHouse ping failed: %v", err)
	}

	tableFQN := fmt.Sprintf("%s.%s", *chDB, *chTable)
	log.Printf("ClickHouse table: %s", tableFQN)

	startTime := time.Now()

	table, err := queryRange(ctx, conn, tableFQN, from, to)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	log.Printf("Fetched %d rows", table.Len())

	cleaned, err := series.CleanTable(table, set, cleanCfg)
	if err != nil {
		log.Fatalf("Gap repair failed: %v", err)
	}

	header := swmf.Header{
		Source: fmt.Sprintf("Exported from ClickHouse table %s", tableFQN),
		GSE:    *gse,
	}
	if err := writeFile(outPath, func(f *os.File) error {
		return swmf.WriteIMF(f, cleaned, header)
	}); err != nil {
		log.Fatalf("Write failed: %v", err)
	}

	if *rbPath != "" {
		if err := writeFile(*rbPath, func(f *os.File) error {
			return swmf.WriteRB(f, cleaned)
		}); err != nil {
			log.Fatalf("Write failed: %v", err)
		}
	}

	elapsed := time.Since(startTime)

	log.Println()
	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Rows Exported: %d", cleaned.Len())
	log.Printf("Output:        %s", outPath)
	log.Printf("Elapsed:       %v", elapsed.Round(time.Millisecond))
	log.Println("=========================================================")
}
