package domain

import (
	"math"

	"github.com/montanaflynn/stats"
)

// mean returns the arithmetic mean, or 0 for an empty slice.
func mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

func maxOf(values []float64) float64 {
	m, err := stats.Max(values)
	if err != nil {
		return 0
	}
	return m
}

func minOf(values []float64) float64 {
	m, err := stats.Min(values)
	if err != nil {
		return 0
	}
	return m
}

// round1 rounds half up (toward +Inf) to one decimal place.
func round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

func clampIntensity(v float64) float64 {
	return min(10, max(1, v))
}

func ptr(v float64) *float64 {
	return &v
}
