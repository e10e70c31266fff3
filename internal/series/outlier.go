package series

import (
	"fmt"
	"math"
)

// OutlierThreshold returns mean(|x|) + coarseness*std(x) computed over the
// whole column. The standard deviation is the sample deviation (n-1), the
// statistics are not windowed, and they are computed once per invocation.
func OutlierThreshold(values []float64, coarseness float64) float64 {
	return meanAbs(values) + coarseness*stdDev(values)
}

// FlagOutliers marks samples whose absolute value exceeds the outlier
// threshold. coarseness must be positive; the default used across the tools
// is 3. One pass over a heavily skewed distribution is not guaranteed to be
// idempotent; callers wanting a fixed point must re-run themselves.
func FlagOutliers(values []float64, coarseness float64) ([]bool, error) {
	if coarseness <= 0 || math.IsNaN(coarseness) {
		return nil, fmt.Errorf("coarseness %v must be positive: %w", coarseness, ErrInvalidConfig)
	}
	threshold := OutlierThreshold(values, coarseness)
	bad := make([]bool, len(values))
	for i, v := range values {
		bad[i] = math.Abs(v) > threshold
	}
	return bad, nil
}

// RejectOutliers flags outliers and closes the resulting holes: linear
// interpolation between valid neighbors, then forward- and back-fill so no
// missing value remains. The smallest-magnitude sample can never exceed the
// threshold, so at least one anchor always survives flagging.
func RejectOutliers(values []float64, coarseness float64) ([]float64, error) {
	bad, err := FlagOutliers(values, coarseness)
	if err != nil {
		return nil, err
	}
	out, err := Interpolate(values, bad)
	if err != nil {
		return nil, err
	}
	return FillRemaining(out), nil
}

// FillRemaining closes any hole interpolation could not resolve with a
// forward-fill then back-fill pass. Holes are non-finite samples; a fully
// finite column is returned as is.
func FillRemaining(values []float64) []float64 {
	var hole []bool
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if hole == nil {
				hole = make([]bool, len(values))
			}
			hole[i] = true
		}
	}
	if hole == nil {
		return values
	}
	out := ForwardFill(values, hole)
	return BackFill(out, hole)
}

func meanAbs(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += math.Abs(v)
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
