package series

import (
	"errors"
	"math"
	"testing"
	"time"
)

func testTable(n int) *Table {
	t := NewTable(n)
	base := time.Date(2014, 2, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		v := float64(i)
		t.Append(base.Add(time.Duration(i)*time.Minute),
			v, -v, 0.5*v, -400-v, 10+v, -10-v, 5+0.1*v, 1e5+100*v)
	}
	return t
}

func TestCleanTableRemovesSentinels(t *testing.T) {
	set, _ := Sentinels(FormatOMNI)
	tbl := testTable(10)
	tbl.Bx[3] = sentinel
	tbl.Vz[0] = 99999.9
	tbl.Temperature[9] = 9999999.0

	got, err := CleanTable(tbl, set, DefaultConfig())
	if err != nil {
		t.Fatalf("CleanTable() error = %v", err)
	}
	if got.Len() != tbl.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), tbl.Len())
	}
	for _, q := range Quantities {
		for i, v := range got.Column(q) {
			if set.Bad(q, v) {
				t.Errorf("column %s[%d] = %v still sentinel-bad", q, i, v)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("column %s[%d] = %v not finite", q, i, v)
			}
		}
	}
	// Interior gap in Bx interpolates between neighbors 2 and 4.
	if got.Bx[3] != 3.0 {
		t.Errorf("Bx[3] = %v, want 3.0", got.Bx[3])
	}
}

func TestCleanTableTimesUntouched(t *testing.T) {
	set, _ := Sentinels(FormatOMNI)
	tbl := testTable(5)
	got, err := CleanTable(tbl, set, DefaultConfig())
	if err != nil {
		t.Fatalf("CleanTable() error = %v", err)
	}
	for i := range tbl.Times {
		if !got.Times[i].Equal(tbl.Times[i]) {
			t.Errorf("Times[%d] = %v, want %v", i, got.Times[i], tbl.Times[i])
		}
	}
}

func TestCleanTableColumnIndependence(t *testing.T) {
	set, _ := Sentinels(FormatOMNI)
	tbl := testTable(8)
	tbl.Bx[2] = sentinel
	tbl.Bx[3] = sentinel

	wantBy := make([]float64, len(tbl.By))
	copy(wantBy, tbl.By)

	got, err := CleanTable(tbl, set, DefaultConfig())
	if err != nil {
		t.Fatalf("CleanTable() error = %v", err)
	}
	if !almostEqual(got.By, wantBy, 0) {
		t.Errorf("By changed by cleaning Bx: %v, want %v", got.By, wantBy)
	}
	if !almostEqual(tbl.By, wantBy, 0) {
		t.Errorf("input By mutated: %v", tbl.By)
	}
}

func TestCleanTableAbortsOnAllBadColumn(t *testing.T) {
	set, _ := Sentinels(FormatOMNI)
	tbl := testTable(4)
	for i := range tbl.Density {
		tbl.Density[i] = sentinel
	}
	_, err := CleanTable(tbl, set, DefaultConfig())
	if !errors.Is(err, ErrUnrecoverableGap) {
		t.Fatalf("CleanTable() error = %v, want ErrUnrecoverableGap", err)
	}
}

func TestCleanTableMalformed(t *testing.T) {
	set, _ := Sentinels(FormatOMNI)
	tbl := testTable(4)
	tbl.Vy = tbl.Vy[:3] // column shorter than time index
	_, err := CleanTable(tbl, set, DefaultConfig())
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("CleanTable() error = %v, want ErrMalformedInput", err)
	}
}

func TestCleanTableInvalidConfig(t *testing.T) {
	set, _ := Sentinels(FormatOMNI)
	cfg := DefaultConfig()
	cfg.Coarseness = -2
	_, err := CleanTable(testTable(4), set, cfg)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("CleanTable() error = %v, want ErrInvalidConfig", err)
	}
}

func TestCleanColumnDegenerate(t *testing.T) {
	set, _ := Sentinels(FormatOMNI)
	_, err := CleanColumn([]float64{1.0}, Bx, set, DefaultConfig())
	if !errors.Is(err, ErrDegenerateSeries) {
		t.Fatalf("CleanColumn() error = %v, want ErrDegenerateSeries", err)
	}
}

func TestCleanColumnReturnsCopy(t *testing.T) {
	set, _ := Sentinels(FormatOMNI)
	values := []float64{1.0, 2.0, 3.0}
	cfg := DefaultConfig()
	cfg.Clean = false
	got, err := CleanColumn(values, Bx, set, cfg)
	if err != nil {
		t.Fatalf("CleanColumn() error = %v", err)
	}
	got[0] = -99
	if values[0] != 1.0 {
		t.Error("CleanColumn returned a shared buffer")
	}
}

func TestCleanColumnWithFiltering(t *testing.T) {
	set, _ := Sentinels(FormatOMNI)
	values := make([]float64, 20)
	for i := range values {
		values[i] = 2.0
	}
	values[4] = sentinel // gap repaired first
	values[12] = 800.0   // then rejected as an outlier

	cfg := DefaultConfig()
	cfg.Filtering = true

	got, err := CleanColumn(values, Bz, set, cfg)
	if err != nil {
		t.Fatalf("CleanColumn() error = %v", err)
	}
	for i, v := range got {
		if v != 2.0 {
			t.Errorf("got[%d] = %v, want 2.0", i, v)
		}
	}
}
