// Package series implements the gap-repair pipeline for solar wind time
// series. It detects archive fill values (sentinels), replaces bad runs by
// linear interpolation between valid neighbors, and optionally rejects
// statistical outliers, producing fully populated columns suitable for
// simulator boundary-condition files.
//
// The package is pure in-memory computation: no file, network, or database
// I/O. Each call operates on its own buffers, so callers may clean
// independent columns or tables concurrently without coordination.
package series

import (
	"errors"
	"fmt"
	"time"
)

// Quantity identifies a physical solar wind quantity carried in a Table
// column.
type Quantity int

const (
	Bx Quantity = iota // IMF x-component, nT
	By                 // IMF y-component, nT
	Bz                 // IMF z-component, nT
	Vx                 // Flow velocity x, km/s
	Vy                 // Flow velocity y, km/s
	Vz                 // Flow velocity z, km/s
	Density            // Proton density, n/cc
	Temperature        // Plasma temperature, K

	NumQuantities = 8
)

// Quantities lists every column quantity in table order.
var Quantities = [NumQuantities]Quantity{Bx, By, Bz, Vx, Vy, Vz, Density, Temperature}

func (q Quantity) String() string {
	switch q {
	case Bx:
		return "bx"
	case By:
		return "by"
	case Bz:
		return "bz"
	case Vx:
		return "vx"
	case Vy:
		return "vy"
	case Vz:
		return "vz"
	case Density:
		return "dens"
	case Temperature:
		return "temp"
	}
	return fmt.Sprintf("quantity(%d)", int(q))
}

// Error kinds surfaced by the cleaning core. Callers match with errors.Is;
// wrapped errors carry column context.
var (
	// ErrMalformedInput reports a column whose length does not match the
	// shared time index.
	ErrMalformedInput = errors.New("column length does not match time index")

	// ErrUnrecoverableGap reports a column with no valid sample anywhere,
	// leaving interpolation without an anchor.
	ErrUnrecoverableGap = errors.New("no valid data in column")

	// ErrInvalidConfig reports a bad cleaning configuration or an unknown
	// source format.
	ErrInvalidConfig = errors.New("invalid cleaning configuration")

	// ErrDegenerateSeries reports a series with fewer than 2 samples.
	ErrDegenerateSeries = errors.New("series has fewer than 2 samples")
)

// Table is a struct-of-arrays solar wind time series: a shared time index
// plus one float64 column per physical quantity. All columns must share
// len(Times).
type Table struct {
	Times []time.Time

	Bx          []float64
	By          []float64
	Bz          []float64
	Vx          []float64
	Vy          []float64
	Vz          []float64
	Density     []float64
	Temperature []float64
}

// NewTable returns an empty table with capacity hint n.
func NewTable(n int) *Table {
	return &Table{
		Times:       make([]time.Time, 0, n),
		Bx:          make([]float64, 0, n),
		By:          make([]float64, 0, n),
		Bz:          make([]float64, 0, n),
		Vx:          make([]float64, 0, n),
		Vy:          make([]float64, 0, n),
		Vz:          make([]float64, 0, n),
		Density:     make([]float64, 0, n),
		Temperature: make([]float64, 0, n),
	}
}

// Len returns the number of samples in the time index.
func (t *Table) Len() int {
	return len(t.Times)
}

// Column returns the value slice for q. The slice is shared, not copied.
func (t *Table) Column(q Quantity) []float64 {
	switch q {
	case Bx:
		return t.Bx
	case By:
		return t.By
	case Bz:
		return t.Bz
	case Vx:
		return t.Vx
	case Vy:
		return t.Vy
	case Vz:
		return t.Vz
	case Density:
		return t.Density
	case Temperature:
		return t.Temperature
	}
	return nil
}

// SetColumn replaces the value slice for q.
func (t *Table) SetColumn(q Quantity, values []float64) {
	switch q {
	case Bx:
		t.Bx = values
	case By:
		t.By = values
	case Bz:
		t.Bz = values
	case Vx:
		t.Vx = values
	case Vy:
		t.Vy = values
	case Vz:
		t.Vz = values
	case Density:
		t.Density = values
	case Temperature:
		t.Temperature = values
	}
}

// Append adds one sample row. Values must be given in table column order.
func (t *Table) Append(ts time.Time, bx, by, bz, vx, vy, vz, dens, temp float64) {
	t.Times = append(t.Times, ts)
	t.Bx = append(t.Bx, bx)
	t.By = append(t.By, by)
	t.Bz = append(t.Bz, bz)
	t.Vx = append(t.Vx, vx)
	t.Vy = append(t.Vy, vy)
	t.Vz = append(t.Vz, vz)
	t.Density = append(t.Density, dens)
	t.Temperature = append(t.Temperature, temp)
}

// Validate checks that every column matches the time index length.
func (t *Table) Validate() error {
	n := len(t.Times)
	for _, q := range Quantities {
		if len(t.Column(q)) != n {
			return fmt.Errorf("%s: have %d samples, time index has %d: %w",
				q, len(t.Column(q)), n, ErrMalformedInput)
		}
	}
	return nil
}
