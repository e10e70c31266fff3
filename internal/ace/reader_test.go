package ace

import (
	"strings"
	"testing"
	"time"

	"github.com/heliolab/solarwind-apps/internal/series"
)

const sampleCSV = `Time,Bx [nT],By [nT],Bz [nT],Vx [km/s],Vy [km/s],Vz [km/s],Rho [n/cc],T [K]
2014-02-15T00:00:00.000Z,1.2,-3.4,0.5,-412.0,12.0,-8.0,4.8,120000.0
2014-02-15T00:01:00.000Z,999.9,-3.5,0.6,-413.0,13.0,-9.0,4.9,121000.0
2014-02-15T00:02:00.000Z,1.4,-3.6,0.7,-414.0,14.0,-10.0,5.0,122000.0
`

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", table.Len())
	}
	want := time.Date(2014, 2, 15, 0, 1, 0, 0, time.UTC)
	if !table.Times[1].Equal(want) {
		t.Errorf("Times[1] = %v, want %v", table.Times[1], want)
	}
	if table.Bx[1] != 999.9 {
		t.Errorf("Bx[1] = %v, unphysical values must pass through the reader", table.Bx[1])
	}
	if table.Vx[2] != -414.0 || table.Temperature[0] != 120000.0 {
		t.Errorf("Vx[2] = %v, Temperature[0] = %v", table.Vx[2], table.Temperature[0])
	}
}

func TestReadCSVThenClean(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	set, err := series.Sentinels(series.FormatACE)
	if err != nil {
		t.Fatalf("Sentinels() error = %v", err)
	}
	cleaned, err := series.CleanTable(table, set, series.DefaultConfig())
	if err != nil {
		t.Fatalf("CleanTable() error = %v", err)
	}
	// |999.9| >= 80 nT, so row 1 of Bx interpolates between 1.2 and 1.4.
	if got := cleaned.Bx[1]; got < 1.299 || got > 1.301 {
		t.Errorf("Bx[1] = %v, want 1.3", got)
	}
}

func TestReadCSVBadRecord(t *testing.T) {
	in := "Time,Bx,By,Bz,Vx,Vy,Vz,Rho,T\nnot-a-time,1,2,3,4,5,6,7,8\n"
	if _, err := ReadCSV(strings.NewReader(in)); err == nil {
		t.Fatal("ReadCSV() error = nil, want timestamp error")
	}
}

func TestReadCSVWrongColumnCount(t *testing.T) {
	in := "Time,Bx,By\n2014-02-15T00:00:00Z,1,2\n"
	if _, err := ReadCSV(strings.NewReader(in)); err == nil {
		t.Fatal("ReadCSV() error = nil, want column-count error")
	}
}

func TestReadCSVEmpty(t *testing.T) {
	in := "Time,Bx,By,Bz,Vx,Vy,Vz,Rho,T\n"
	if _, err := ReadCSV(strings.NewReader(in)); err == nil {
		t.Fatal("ReadCSV() error = nil, want no-data error")
	}
}
