package omniweb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/pgzip"

	"github.com/heliolab/solarwind-apps/internal/series"
)

// HeaderLines is the fixed header size of a converted .dat file: provenance
// line, column-name line, #START marker.
const HeaderLines = 3

// DatColumns is the column-name line written into converted files and
// expected by the simulator.
const DatColumns = "yr mn dy hr min sec msec bx by bz vx vy vz dens temp"

// extractQuantityFields is the number of fields of a raw line already
// reduced to the four time fields plus the eight carried quantities, the
// layout the OMNIWeb interactive extract serves.
const extractQuantityFields = 4 + series.NumQuantities

// Convert rewrites a raw OMNI high-res stream into the converted .dat layout:
// the 3-line header followed by one line per sample with day-of-year
// timestamps expanded to calendar fields and exactly the eight carried data
// columns. Full monthly lines have the quantities picked out of their spdf
// positions; interactive-extract lines (time plus the eight quantities)
// pass their data fields through. Fill values are kept either way; cleaning
// is a separate step.
func Convert(r io.Reader, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "OMNI file downloaded from https://omniweb.gsfc.nasa.gov/\n")
	fmt.Fprintf(bw, "%s\n", DatColumns)
	fmt.Fprintf(bw, "#START\n")

	scanner := newLineScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		var data []string
		switch {
		case len(fields) >= minRawFields:
			data = []string{
				fields[fieldBx], fields[fieldByGSM], fields[fieldBzGSM],
				fields[fieldVx], fields[fieldVy], fields[fieldVz],
				fields[fieldDensity], fields[fieldTemp],
			}
		case len(fields) == extractQuantityFields:
			data = fields[4:]
		default:
			return fmt.Errorf("line %d: want %d or at least %d fields, have %d",
				lineNum, extractQuantityFields, minRawFields, len(fields))
		}

		ts, err := parseDOYTime(fields[0], fields[1], fields[2], fields[3])
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		fmt.Fprintf(bw, "%s 000 %s\n", ts.Format("2006 01 02 15 04 05"), strings.Join(data, " "))
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadDat parses a converted .dat stream into a table. The 3-line header is
// skipped; each remaining line must carry exactly the 7 calendar time fields
// followed by the 8 data columns. Extra fields mean the file was never
// converted (or misconverted) and reading it would pick up the wrong columns,
// so the count is checked strictly.
func ReadDat(r io.Reader) (*series.Table, error) {
	scanner := newLineScanner(r)
	table := series.NewTable(0)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum <= HeaderLines {
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 15 {
			return nil, fmt.Errorf("line %d: want 15 fields, have %d", lineNum, len(fields))
		}

		ts, err := parseCalendarTime(fields[:7])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		values, err := parseFloats(fields[7:15])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		table.Append(ts, values[0], values[1], values[2], values[3],
			values[4], values[5], values[6], values[7])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("no data lines found")
	}
	return table, nil
}

// ReadASC parses a raw monthly .asc stream directly, keeping only samples in
// [from, to]. A zero from/to disables that bound.
func ReadASC(r io.Reader, from, to time.Time) (*series.Table, error) {
	scanner := newLineScanner(r)
	table := series.NewTable(0)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < minRawFields {
			return nil, fmt.Errorf("line %d: want %d fields, have %d", lineNum, minRawFields, len(fields))
		}
		ts, err := parseDOYTime(fields[0], fields[1], fields[2], fields[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if !from.IsZero() && ts.Before(from) {
			continue
		}
		if !to.IsZero() && ts.After(to) {
			continue
		}

		values, err := parseFloats([]string{
			fields[fieldBx], fields[fieldByGSM], fields[fieldBzGSM],
			fields[fieldVx], fields[fieldVy], fields[fieldVz],
			fields[fieldDensity], fields[fieldTemp],
		})
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		table.Append(ts, values[0], values[1], values[2], values[3],
			values[4], values[5], values[6], values[7])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("no samples in requested range")
	}
	return table, nil
}

// Open opens a local archive file for reading, decompressing transparently
// when the name ends in .gz. Close the returned reader when done.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gzip open %s: %w", path, err)
	}
	return &gzipFile{gz: gz, f: f}, nil
}

type gzipFile struct {
	gz *pgzip.Reader
	f  *os.File
}

func (g *gzipFile) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipFile) Close() error {
	gzErr := g.gz.Close()
	fErr := g.f.Close()
	if gzErr != nil {
		return gzErr
	}
	return fErr
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(bufio.NewReaderSize(r, 1<<20))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}

func parseDOYTime(year, doy, hour, min string) (time.Time, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad year %q", year)
	}
	d, err := strconv.Atoi(doy)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad day-of-year %q", doy)
	}
	h, err := strconv.Atoi(hour)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad hour %q", hour)
	}
	m, err := strconv.Atoi(min)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad minute %q", min)
	}
	if d < 1 || d > 366 {
		return time.Time{}, fmt.Errorf("day-of-year %d out of range", d)
	}
	return time.Date(y, 1, 1, h, m, 0, 0, time.UTC).AddDate(0, 0, d-1), nil
}

func parseCalendarTime(fields []string) (time.Time, error) {
	nums := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad time field %q", f)
		}
		nums[i] = n
	}
	return time.Date(nums[0], time.Month(nums[1]), nums[2],
		nums[3], nums[4], nums[5], nums[6]*int(time.Millisecond), time.UTC), nil
}

func parseFloats(fields []string) ([]float64, error) {
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q", f)
		}
		values[i] = v
	}
	return values, nil
}
