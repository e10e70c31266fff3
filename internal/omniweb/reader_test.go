package omniweb

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
)

// rawLine builds a raw high-res .asc line with the given time fields and the
// carried quantities placed at their spdf column positions.
func rawLine(year, doy, hour, min int, bx, by, bz, vx, vy, vz, dens, temp float64) string {
	fields := make([]string, minRawFields)
	for i := range fields {
		fields[i] = "0.0"
	}
	fields[0] = fmt.Sprintf("%d", year)
	fields[1] = fmt.Sprintf("%d", doy)
	fields[2] = fmt.Sprintf("%d", hour)
	fields[3] = fmt.Sprintf("%d", min)
	fields[fieldBx] = fmt.Sprintf("%.2f", bx)
	fields[fieldByGSM] = fmt.Sprintf("%.2f", by)
	fields[fieldBzGSM] = fmt.Sprintf("%.2f", bz)
	fields[fieldVx] = fmt.Sprintf("%.1f", vx)
	fields[fieldVy] = fmt.Sprintf("%.1f", vy)
	fields[fieldVz] = fmt.Sprintf("%.1f", vz)
	fields[fieldDensity] = fmt.Sprintf("%.2f", dens)
	fields[fieldTemp] = fmt.Sprintf("%.1f", temp)
	return strings.Join(fields, " ")
}

func TestMonthlyURL(t *testing.T) {
	got := MonthlyURL(2014, time.February)
	want := BaseURL + "omni_min201402.asc"
	if got != want {
		t.Errorf("MonthlyURL() = %q, want %q", got, want)
	}
}

func TestConvert(t *testing.T) {
	// Interactive-extract layout: four time fields plus the eight quantities.
	in := "2014 46 23 58 1.2 -3.4 0.5 -400.0 10.0 -10.0 5.0 100000.0\n" +
		"2014 46 23 59 1.3 -3.5 0.6 -401.0 11.0 -11.0 5.1 100100.0\n"
	var out bytes.Buffer
	if err := Convert(strings.NewReader(in), &out); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != HeaderLines+2 {
		t.Fatalf("got %d lines, want %d", len(lines), HeaderLines+2)
	}
	if lines[1] != DatColumns {
		t.Errorf("column line = %q, want %q", lines[1], DatColumns)
	}
	if lines[2] != "#START" {
		t.Errorf("marker line = %q, want #START", lines[2])
	}
	// Day 46 of 2014 is February 15.
	want := "2014 02 15 23 58 00 000 1.2 -3.4 0.5 -400.0 10.0 -10.0 5.0 100000.0"
	if lines[3] != want {
		t.Errorf("data line = %q, want %q", lines[3], want)
	}
}

// Monthly archive lines carry dozens of columns; Convert must pick the
// carried quantities out of their spdf positions, and ReadDat must recover
// them from the converted stream.
func TestConvertMonthlyRoundTrip(t *testing.T) {
	in := rawLine(2014, 46, 12, 0, 1.2, -3.4, 0.5, -400, 10, -10, 5, 1e5) + "\n" +
		rawLine(2014, 46, 12, 1, 1.3, -3.5, 0.6, -401, 11, -11, 5.1, 1.001e5) + "\n"

	var out bytes.Buffer
	if err := Convert(strings.NewReader(in), &out); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	table, err := ReadDat(&out)
	if err != nil {
		t.Fatalf("ReadDat() error = %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	wantTime := time.Date(2014, 2, 15, 12, 0, 0, 0, time.UTC)
	if !table.Times[0].Equal(wantTime) {
		t.Errorf("Times[0] = %v, want %v", table.Times[0], wantTime)
	}
	if table.Bx[0] != 1.2 || table.By[0] != -3.4 || table.Bz[0] != 0.5 {
		t.Errorf("B = (%v, %v, %v), want (1.2, -3.4, 0.5)", table.Bx[0], table.By[0], table.Bz[0])
	}
	if table.Vx[0] != -400 || table.Vy[0] != 10 || table.Vz[0] != -10 {
		t.Errorf("V = (%v, %v, %v), want (-400, 10, -10)", table.Vx[0], table.Vy[0], table.Vz[0])
	}
	if table.Density[1] != 5.1 || table.Temperature[1] != 1.001e5 {
		t.Errorf("row 1 = dens %v temp %v, want 5.1 100100", table.Density[1], table.Temperature[1])
	}
}

func TestConvertBadLine(t *testing.T) {
	if err := Convert(strings.NewReader("2014 46\n"), &bytes.Buffer{}); err == nil {
		t.Fatal("Convert() error = nil, want field-count error")
	}
	// Neither a full monthly line nor a time+8 extract line.
	if err := Convert(strings.NewReader("2014 46 23 58 1.2 -3.4\n"), &bytes.Buffer{}); err == nil {
		t.Fatal("Convert() error = nil, want field-count error")
	}
}

func TestReadDat(t *testing.T) {
	in := "OMNI file downloaded from https://omniweb.gsfc.nasa.gov/\n" +
		DatColumns + "\n" +
		"#START\n" +
		"2014 02 15 23 58 00 000 1.20 -3.40 0.50 -400.0 10.0 -10.0 5.00 100000.0\n" +
		"2014 02 15 23 59 00 000 9999.99 -3.50 0.60 -401.0 11.0 -11.0 5.10 100100.0\n"

	table, err := ReadDat(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadDat() error = %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	wantTime := time.Date(2014, 2, 15, 23, 58, 0, 0, time.UTC)
	if !table.Times[0].Equal(wantTime) {
		t.Errorf("Times[0] = %v, want %v", table.Times[0], wantTime)
	}
	if table.Bx[0] != 1.2 || table.Bx[1] != 9999.99 {
		t.Errorf("Bx = %v, sentinel must pass through the reader", table.Bx)
	}
	if table.Temperature[1] != 100100.0 {
		t.Errorf("Temperature[1] = %v, want 100100.0", table.Temperature[1])
	}
}

func TestReadDatShortLine(t *testing.T) {
	in := "h1\nh2\n#START\n2014 02 15 23 58 00 000 1.2\n"
	if _, err := ReadDat(strings.NewReader(in)); err == nil {
		t.Fatal("ReadDat() error = nil, want field-count error")
	}
}

// A raw monthly line that skipped conversion must be rejected, not read with
// bookkeeping columns in place of the physical quantities.
func TestReadDatRejectsUnconvertedLine(t *testing.T) {
	in := "h1\nh2\n#START\n" + rawLine(2014, 46, 12, 0, 1.2, -3.4, 0.5, -400, 10, -10, 5, 1e5) + "\n"
	if _, err := ReadDat(strings.NewReader(in)); err == nil {
		t.Fatal("ReadDat() error = nil, want field-count error")
	}
}

func TestReadDatEmpty(t *testing.T) {
	in := "h1\nh2\n#START\n"
	if _, err := ReadDat(strings.NewReader(in)); err == nil {
		t.Fatal("ReadDat() error = nil, want no-data error")
	}
}

func TestReadASC(t *testing.T) {
	in := rawLine(2014, 46, 12, 0, 1.2, -3.4, 0.5, -400, 10, -10, 5, 1e5) + "\n" +
		rawLine(2014, 46, 12, 1, 1.3, -3.5, 0.6, -401, 11, -11, 5.1, 1.001e5) + "\n"

	table, err := ReadASC(strings.NewReader(in), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ReadASC() error = %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	if table.Bx[0] != 1.2 || table.By[0] != -3.4 || table.Bz[0] != 0.5 {
		t.Errorf("B = (%v, %v, %v)", table.Bx[0], table.By[0], table.Bz[0])
	}
	if table.Vx[1] != -401 || table.Density[1] != 5.1 {
		t.Errorf("row 1 = vx %v dens %v", table.Vx[1], table.Density[1])
	}
}

func TestReadASCRangeFilter(t *testing.T) {
	in := rawLine(2014, 46, 12, 0, 1, 1, 1, -400, 0, 0, 5, 1e5) + "\n" +
		rawLine(2014, 46, 12, 1, 2, 2, 2, -400, 0, 0, 5, 1e5) + "\n" +
		rawLine(2014, 46, 12, 2, 3, 3, 3, -400, 0, 0, 5, 1e5) + "\n"

	from := time.Date(2014, 2, 15, 12, 1, 0, 0, time.UTC)
	table, err := ReadASC(strings.NewReader(in), from, time.Time{})
	if err != nil {
		t.Fatalf("ReadASC() error = %v", err)
	}
	if table.Len() != 2 || table.Bx[0] != 2 {
		t.Errorf("Len() = %d, Bx[0] = %v; want 2 rows starting at Bx=2", table.Len(), table.Bx)
	}
}

func TestOpenGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "omni_min201402.asc.gz")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(rawLine(2014, 46, 0, 0, 1, 1, 1, -400, 0, 0, 5, 1e5) + "\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	rc, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	table, err := ReadASC(rc, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ReadASC() error = %v", err)
	}
	if table.Len() != 1 || table.Vx[0] != -400 {
		t.Errorf("Len() = %d, Vx = %v", table.Len(), table.Vx)
	}
}
