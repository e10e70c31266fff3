package series

import (
	"fmt"
	"math"
	"strings"
)

// Format tags a supported archive source format. The format is always chosen
// explicitly by the caller, never inferred from file content.
type Format int

const (
	// FormatOMNI is the OMNIWeb government-archive format. Missing samples
	// carry exact fill values (all-nines numbers).
	FormatOMNI Format = iota

	// FormatACE is the ACE/Wind spacecraft CSV format from cdaweb. Missing
	// or unphysical samples are recognized by magnitude thresholds.
	FormatACE
)

func (f Format) String() string {
	switch f {
	case FormatOMNI:
		return "omni"
	case FormatACE:
		return "ace"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// ParseFormat maps a source-format name to its tag. Unknown names are an
// ErrInvalidConfig so misconfiguration is reported before any scan begins.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "omni":
		return FormatOMNI, nil
	case "ace", "wind", "ace/wind":
		return FormatACE, nil
	}
	return 0, fmt.Errorf("unknown source format %q: %w", name, ErrInvalidConfig)
}

// omniFillValues are the exact fill constants OMNIWeb writes for missing
// samples. They are literal magic numbers defined by the archive format and
// must be matched with exact floating-point equality.
var omniFillValues = []float64{9999.99, 99999.9, 9999999.0, 999.99}

// Bound is a magnitude-threshold validity test: a sample is valid when its
// (absolute, if Abs) value is strictly below Limit.
type Bound struct {
	Limit float64
	Abs   bool
}

func (b Bound) valid(v float64) bool {
	if b.Abs {
		v = math.Abs(v)
	}
	return v < b.Limit // strict; NaN compares false and is therefore bad
}

// SentinelSet classifies samples as sentinel-bad for one source format.
// It is a constant value consulted read-only during detection.
type SentinelSet struct {
	fill   []float64
	bounds map[Quantity]Bound
}

// Sentinels returns the sentinel set for a source format.
func Sentinels(f Format) (SentinelSet, error) {
	switch f {
	case FormatOMNI:
		return SentinelSet{fill: omniFillValues}, nil
	case FormatACE:
		return SentinelSet{bounds: map[Quantity]Bound{
			Bx:          {Limit: 80, Abs: true},    // nT
			By:          {Limit: 80, Abs: true},    // nT
			Bz:          {Limit: 80, Abs: true},    // nT
			Vx:          {Limit: 2000, Abs: true},  // km/s
			Vy:          {Limit: 1000, Abs: true},  // km/s
			Vz:          {Limit: 1000, Abs: true},  // km/s
			Density:     {Limit: 500, Abs: false},  // n/cc
			Temperature: {Limit: 1e7, Abs: false},  // K
		}}, nil
	}
	return SentinelSet{}, fmt.Errorf("no sentinel set for format %d: %w", int(f), ErrInvalidConfig)
}

// Bad reports whether v is a sentinel-bad sample of quantity q.
// NaN is always bad.
func (s SentinelSet) Bad(q Quantity, v float64) bool {
	if math.IsNaN(v) {
		return true
	}
	for _, fill := range s.fill {
		if v == fill {
			return true
		}
	}
	if b, ok := s.bounds[q]; ok {
		return !b.valid(v)
	}
	return false
}

// Mask returns a bad-sample mask of equal length for values of quantity q.
// It is total: any input, including all-bad or all-valid, is accepted.
func (s SentinelSet) Mask(q Quantity, values []float64) []bool {
	mask := make([]bool, len(values))
	for i, v := range values {
		mask[i] = s.Bad(q, v)
	}
	return mask
}
