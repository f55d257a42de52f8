package domain

import (
	"context"
	"io"
	"log/slog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// dailySeries builds one observation per day starting at start, using set to
// fill each day's readings.
func dailySeries(start Date, n int, set func(i int, o *Observation)) []Observation {
	out := make([]Observation, n)
	for i := range out {
		out[i] = Observation{Date: start.AddDays(i), Humidity: 60, Pressure: 1013}
		set(i, &out[i])
	}
	return out
}

func temperatureSeries(start Date, temps []float64) []Observation {
	return dailySeries(start, len(temps), func(i int, o *Observation) { o.Temperature = temps[i] })
}

func precipitationSeries(start Date, precip []float64) []Observation {
	return dailySeries(start, len(precip), func(i int, o *Observation) { o.Precipitation = precip[i] })
}

// repeat returns head followed by n copies of v.
func repeat(head []float64, v float64, n int) []float64 {
	out := append([]float64(nil), head...)
	for range n {
		out = append(out, v)
	}
	return out
}

// droughtPrecip returns 1000 mm on every day in spikes and 0 elsewhere.
func droughtPrecip(n int, spikes ...int) []float64 {
	out := make([]float64, n)
	for _, s := range spikes {
		out[s] = 1000
	}
	return out
}

func every(from, to, step int) []int {
	var out []int
	for i := from; i <= to; i += step {
		out = append(out, i)
	}
	return out
}

// --- mock geocoder ---

type mockGeocoder struct {
	forwardResult GeocodingResult
	forwardErr    error
	reverseResult GeocodingResult
	reverseErr    error
	forwardCalls  int
	reverseCalls  int
	lastName      string
	lastState     string
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, name, state string) (GeocodingResult, error) {
	m.forwardCalls++
	m.lastName, m.lastState = name, state
	return m.forwardResult, m.forwardErr
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (GeocodingResult, error) {
	m.reverseCalls++
	return m.reverseResult, m.reverseErr
}
