package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTrend(t *testing.T) {
	tests := []struct {
		name          string
		frequencies   []int
		wantDirection TrendDirection
		wantMagnitude float64
	}{
		{"decrease", []int{10, 10, 10, 10, 10, 4}, TrendDecreasing, -60},
		{"increase", []int{2, 1, 3}, TrendIncreasing, 50},
		{"zero start replaced by one", []int{0, 3, 5}, TrendIncreasing, 400},
		{"zero end replaced by one", []int{4, 2, 0}, TrendDecreasing, -75},
		{"both ends zero", []int{0, 7, 0}, TrendStable, 0},
		{"exactly five percent is stable", []int{20, 21}, TrendStable, 5},
		{"single year", []int{3}, TrendStable, 0},
		{"empty", nil, TrendStable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateTrend(tt.frequencies)
			assert.Equal(t, tt.wantDirection, got.Direction)
			assert.InDelta(t, tt.wantMagnitude, got.Magnitude, 1e-9)
		})
	}
}

func TestEstimateTrend_Slope(t *testing.T) {
	got := EstimateTrend([]int{10, 10, 10, 10, 10, 4})
	assert.InDelta(t, -90.0/105.0, got.Slope, 1e-12)
	assert.InDelta(t, -60, got.PercentChange, 1e-9)

	assert.Zero(t, EstimateTrend([]int{5}).Slope)
	assert.Zero(t, EstimateTrend(nil).Slope)
}

func TestEstimateTrend_DirectionIgnoresSlope(t *testing.T) {
	// Rising in the middle, same at both ends.
	got := EstimateTrend([]int{2, 8, 9, 10, 2})
	assert.Equal(t, TrendStable, got.Direction)
	assert.Positive(t, got.Slope)
}
