package series

import (
	"fmt"
	"math"
	"time"
)

// Config controls the cleaning pipeline. The zero value is not valid; start
// from DefaultConfig.
type Config struct {
	// Coarseness is the number of standard deviations defining an outlier.
	Coarseness float64

	// Filtering enables statistical outlier rejection after sentinel
	// cleaning.
	Filtering bool

	// Clean enables sentinel-based gap repair. Disabling it is only useful
	// for data already known to carry no fill values.
	Clean bool
}

// DefaultConfig returns the documented defaults: coarseness 3, no outlier
// filtering, sentinel cleaning on.
func DefaultConfig() Config {
	return Config{Coarseness: 3, Filtering: false, Clean: true}
}

// Validate reports configuration errors before any scan begins.
func (c Config) Validate() error {
	if c.Coarseness <= 0 || math.IsNaN(c.Coarseness) {
		return fmt.Errorf("coarseness %v must be positive: %w", c.Coarseness, ErrInvalidConfig)
	}
	return nil
}

// CleanColumn repairs one column: sentinel gaps are interpolated, then, with
// cfg.Filtering, outliers beyond the coarseness threshold are rejected and
// the holes closed. The input slice is not mutated; the result has the same
// length and no sentinel, outlier, or missing sample remaining.
func CleanColumn(values []float64, q Quantity, set SentinelSet, cfg Config) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("have %d samples: %w", len(values), ErrDegenerateSeries)
	}

	out := values
	if cfg.Clean {
		cleaned, err := Interpolate(out, set.Mask(q, out))
		if err != nil {
			return nil, err
		}
		out = cleaned
	}

	if cfg.Filtering {
		filtered, err := RejectOutliers(out, cfg.Coarseness)
		if err != nil {
			return nil, err
		}
		out = filtered
	}

	if sameSlice(out, values) {
		// Neither stage ran; still return a caller-owned copy.
		out = make([]float64, len(values))
		copy(out, values)
	}
	return out, nil
}

// CleanTable applies CleanColumn independently to every numeric column and
// leaves the time index untouched. Columns do not influence each other. Any
// column failure aborts the whole table: a boundary-condition file with one
// partially clean column is worse than a hard failure downstream.
func CleanTable(t *Table, set SentinelSet, cfg Config) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	out := &Table{Times: make([]time.Time, len(t.Times))}
	copy(out.Times, t.Times)

	for _, q := range Quantities {
		cleaned, err := CleanColumn(t.Column(q), q, set, cfg)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", q, err)
		}
		out.SetColumn(q, cleaned)
	}
	return out, nil
}

func sameSlice(a, b []float64) bool {
	return len(a) == len(b) && len(a) > 0 && &a[0] == &b[0]
}
