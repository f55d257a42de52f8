package domain

import (
	"fmt"
	"math"
	"slices"
)

// Observation is one day of weather readings for a region.
type Observation struct {
	Date          Date    `json:"date"`
	Temperature   float64 `json:"temperature"`   // °C
	Humidity      float64 `json:"humidity"`      // %
	Precipitation float64 `json:"precipitation"` // mm
	WindSpeed     float64 `json:"wind_speed"`    // km/h
	Pressure      float64 `json:"pressure"`      // hPa
}

// HazardEvent is a maximal run of consecutive days that crossed a hazard
// threshold. Temperature fields are only set for temperature-based hazards.
type HazardEvent struct {
	StartDate      Date     `json:"start_date"`
	EndDate        Date     `json:"end_date"`
	Duration       int      `json:"duration"`
	Intensity      float64  `json:"intensity"`
	MaxTemperature *float64 `json:"max_temperature,omitempty"`
	MinTemperature *float64 `json:"min_temperature,omitempty"`
	AvgTemperature *float64 `json:"avg_temperature,omitempty"`
}

// YearlyHazardData summarizes the events that started in one calendar year.
type YearlyHazardData struct {
	Year      int     `json:"year"`
	Frequency int     `json:"frequency"`
	Intensity float64 `json:"intensity"`
	Duration  float64 `json:"duration"`
}

// ValidateSeries checks that dates are strictly ascending and that readings
// are finite with non-negative precipitation and wind speed. Detection
// assumes a series that passed this check.
func ValidateSeries(observations []Observation) error {
	for i, o := range observations {
		if i > 0 && !o.Date.After(observations[i-1].Date) {
			return fmt.Errorf("%w: %s follows %s", ErrUnorderedSeries, o.Date, observations[i-1].Date)
		}
		for _, v := range []float64{o.Temperature, o.Humidity, o.Precipitation, o.WindSpeed, o.Pressure} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite reading on %s", ErrInvalidObservation, o.Date)
			}
		}
		if o.Precipitation < 0 {
			return fmt.Errorf("%w: negative precipitation on %s", ErrInvalidObservation, o.Date)
		}
		if o.WindSpeed < 0 {
			return fmt.Errorf("%w: negative wind speed on %s", ErrInvalidObservation, o.Date)
		}
	}
	return nil
}

// observationYears returns the distinct calendar years of the series in
// ascending order.
func observationYears(observations []Observation) []int {
	var years []int
	seen := make(map[int]bool)
	for _, o := range observations {
		y := o.Date.Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	slices.Sort(years)
	return years
}
