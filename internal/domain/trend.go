package domain

import "math"

// TrendDirection classifies the change in yearly event frequency.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// stableBand is the absolute percent change at or below which a trend is stable.
const stableBand = 5.0

// Trend describes how event frequency moved across the yearly series.
type Trend struct {
	// Slope is the least-squares slope of frequency against year index.
	// It is informational and does not affect Direction.
	Slope         float64
	PercentChange float64
	Direction     TrendDirection
	Magnitude     float64
}

// EstimateTrend compares the first and last frequency. A zero at either end
// is replaced by 1, as is an empty series.
func EstimateTrend(frequencies []int) Trend {
	n := float64(len(frequencies))
	var sumX, sumY, sumXY, sumXX float64
	for i, f := range frequencies {
		x, y := float64(i), float64(f)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	var slope float64
	if denom := n*sumXX - sumX*sumX; denom != 0 {
		slope = (n*sumXY - sumX*sumY) / denom
	}

	first, last := 1.0, 1.0
	if len(frequencies) > 0 {
		if f := frequencies[0]; f != 0 {
			first = float64(f)
		}
		if f := frequencies[len(frequencies)-1]; f != 0 {
			last = float64(f)
		}
	}
	pct := (last - first) / first * 100

	dir := TrendStable
	if math.Abs(pct) > stableBand {
		dir = TrendIncreasing
		if pct < 0 {
			dir = TrendDecreasing
		}
	}

	return Trend{
		Slope:         slope,
		PercentChange: pct,
		Direction:     dir,
		Magnitude:     round1(pct),
	}
}
