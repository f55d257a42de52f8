package domain

import "fmt"

// HazardKind names a supported climate hazard.
type HazardKind string

const (
	Heatwave      HazardKind = "heatwave"
	Drought       HazardKind = "drought"
	HeavyRainfall HazardKind = "heavy_rainfall"
	ColdWave      HazardKind = "cold_wave"
)

// HazardKinds lists every supported kind in display order.
func HazardKinds() []HazardKind {
	return []HazardKind{Heatwave, Drought, HeavyRainfall, ColdWave}
}

// Valid reports whether k has a detector.
func (k HazardKind) Valid() bool {
	_, ok := detectors[k]
	return ok
}

// ParseHazardKind maps an exact kind name to its HazardKind. Any other
// string, including differently cased names, falls back to Heatwave.
func ParseHazardKind(s string) HazardKind {
	if k := HazardKind(s); k.Valid() {
		return k
	}
	return Heatwave
}

// droughtWindow is the length in days of the rolling precipitation sum.
const droughtWindow = 30

// detector holds everything that differs between hazard kinds.
type detector struct {
	metric     func([]Observation) []float64
	sample     func([]float64) []float64 // nil draws the threshold from the whole metric series
	percentile float64
	direction  Direction
	minRun     int
	intensity  func(run Run, threshold float64) float64
	annotate   func(event *HazardEvent, run Run)

	// emptyOK reports no events instead of failing when the sample is empty.
	emptyOK bool
}

var detectors = map[HazardKind]detector{
	Heatwave: {
		metric:     temperatures,
		percentile: 0.95,
		direction:  Above,
		minRun:     3,
		intensity: func(run Run, threshold float64) float64 {
			return (maxOf(run.Values) - threshold) / 2
		},
		annotate: func(e *HazardEvent, run Run) {
			e.MaxTemperature = ptr(maxOf(run.Values))
			e.AvgTemperature = ptr(mean(run.Values))
		},
	},
	Drought: {
		metric:     rollingPrecipitation,
		percentile: 0.10,
		direction:  Below,
		minRun:     droughtWindow,
		intensity: func(run Run, threshold float64) float64 {
			return (threshold - minOf(run.Values)) / threshold * 10
		},
	},
	HeavyRainfall: {
		metric:     precipitation,
		sample:     positive,
		percentile: 0.95,
		direction:  Above,
		minRun:     1,
		intensity: func(run Run, threshold float64) float64 {
			return maxOf(run.Values) / threshold * 5
		},
		emptyOK: true,
	},
	ColdWave: {
		metric:     temperatures,
		percentile: 0.05,
		direction:  Below,
		minRun:     3,
		intensity: func(run Run, threshold float64) float64 {
			return (threshold - minOf(run.Values)) / 5
		},
		annotate: func(e *HazardEvent, run Run) {
			e.MinTemperature = ptr(minOf(run.Values))
			e.AvgTemperature = ptr(mean(run.Values))
		},
	},
}

// Detection is the outcome of running one detector over a series.
type Detection struct {
	Kind      HazardKind
	Threshold float64
	Events    []HazardEvent
}

// Detect finds the events of the given kind in a date-ordered series.
// Unknown kinds are treated as Heatwave. Events come back in chronological
// order and never overlap.
func Detect(observations []Observation, kind HazardKind) (Detection, error) {
	det, ok := detectors[kind]
	if !ok {
		kind = Heatwave
		det = detectors[Heatwave]
	}

	series := det.metric(observations)
	sample := series
	if det.sample != nil {
		sample = det.sample(series)
	}

	out := Detection{Kind: kind, Events: []HazardEvent{}}
	if len(sample) == 0 && det.emptyOK {
		return out, nil
	}

	threshold, err := Percentile(sample, det.percentile)
	if err != nil {
		return Detection{}, fmt.Errorf("detect %s: %w", kind, err)
	}
	out.Threshold = threshold

	for run := range Runs(series, threshold, det.direction, det.minRun) {
		event := HazardEvent{
			StartDate: observations[run.Start].Date,
			EndDate:   observations[run.End()].Date,
			Duration:  run.Len(),
			Intensity: clampIntensity(det.intensity(run, threshold)),
		}
		if det.annotate != nil {
			det.annotate(&event, run)
		}
		out.Events = append(out.Events, event)
	}
	return out, nil
}

func temperatures(observations []Observation) []float64 {
	out := make([]float64, len(observations))
	for i, o := range observations {
		out[i] = o.Temperature
	}
	return out
}

func precipitation(observations []Observation) []float64 {
	out := make([]float64, len(observations))
	for i, o := range observations {
		out[i] = o.Precipitation
	}
	return out
}

// rollingPrecipitation returns, for each day, the precipitation total over
// that day and up to droughtWindow-1 days before it. Early days use the
// shorter window that is available.
func rollingPrecipitation(observations []Observation) []float64 {
	out := make([]float64, len(observations))
	for i := range observations {
		var sum float64
		for j := max(0, i-droughtWindow+1); j <= i; j++ {
			sum += observations[j].Precipitation
		}
		out[i] = sum
	}
	return out
}

func positive(values []float64) []float64 {
	var out []float64
	for _, v := range values {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}
