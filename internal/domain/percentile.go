package domain

import (
	"fmt"
	"math"
	"slices"
)

// Percentile returns the nearest-rank element sorted[floor(n*p)] of values,
// clamped to the last element when p is 1. The input is not modified.
func Percentile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyInput
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPercentile, p)
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	idx := min(int(math.Floor(float64(len(sorted))*p)), len(sorted)-1)
	return sorted[idx], nil
}
