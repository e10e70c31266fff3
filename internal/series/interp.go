package series

import "fmt"

// Interpolate replaces every maximal run of bad samples with values linearly
// interpolated between the flanking valid samples. A leading bad run is
// back-filled with the first valid value; a trailing bad run holds the last
// valid value. The input is not mutated.
//
// Returns ErrDegenerateSeries for fewer than 2 samples, ErrMalformedInput if
// the mask length differs, and ErrUnrecoverableGap when no valid sample
// exists anywhere.
func Interpolate(values []float64, bad []bool) ([]float64, error) {
	if len(values) < 2 {
		return nil, fmt.Errorf("have %d samples: %w", len(values), ErrDegenerateSeries)
	}
	if len(bad) != len(values) {
		return nil, fmt.Errorf("mask length %d, values length %d: %w",
			len(bad), len(values), ErrMalformedInput)
	}

	out := make([]float64, len(values))
	copy(out, values)

	lastGood := -1
	for i := range out {
		if bad[i] {
			continue
		}
		switch {
		case lastGood < 0 && i > 0:
			// Leading run: first valid sample anchors a back-fill.
			for j := 0; j < i; j++ {
				out[j] = out[i]
			}
		case lastGood >= 0 && i-lastGood > 1:
			// Interior run between anchors lastGood and i.
			step := (out[i] - out[lastGood]) / float64(i-lastGood)
			for j := lastGood + 1; j < i; j++ {
				out[j] = out[lastGood] + float64(j-lastGood)*step
			}
		}
		lastGood = i
	}

	if lastGood < 0 {
		return nil, ErrUnrecoverableGap
	}

	// Trailing run never recovers: hold the last known-good value.
	for j := lastGood + 1; j < len(out); j++ {
		out[j] = out[lastGood]
	}
	return out, nil
}

// ForwardFill replaces each bad sample with the nearest earlier valid value
// and clears its mask entry. Bad samples before the first valid one are left
// untouched. The values slice is copied; the mask is updated in place so fill
// passes can be chained.
func ForwardFill(values []float64, bad []bool) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	lastGood := -1
	for i := range out {
		if !bad[i] {
			lastGood = i
			continue
		}
		if lastGood >= 0 {
			out[i] = out[lastGood]
			bad[i] = false
		}
	}
	return out
}

// BackFill replaces each bad sample with the nearest later valid value and
// clears its mask entry. Bad samples after the last valid one are left
// untouched.
func BackFill(values []float64, bad []bool) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	nextGood := -1
	for i := len(out) - 1; i >= 0; i-- {
		if !bad[i] {
			nextGood = i
			continue
		}
		if nextGood >= 0 {
			out[i] = out[nextGood]
			bad[i] = false
		}
	}
	return out
}
