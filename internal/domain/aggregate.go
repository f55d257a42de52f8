package domain

// AggregateByYear buckets events by the year of their start date. The result
// has one entry per distinct observation year in ascending order. Years
// without events report zero frequency, intensity and duration.
func AggregateByYear(observations []Observation, events []HazardEvent) []YearlyHazardData {
	byYear := make(map[int][]HazardEvent)
	for _, e := range events {
		y := e.StartDate.Year()
		byYear[y] = append(byYear[y], e)
	}

	years := observationYears(observations)
	out := make([]YearlyHazardData, 0, len(years))
	for _, y := range years {
		bucket := byYear[y]
		out = append(out, YearlyHazardData{
			Year:      y,
			Frequency: len(bucket),
			Intensity: round1(meanIntensity(bucket)),
			Duration:  round1(meanDuration(bucket)),
		})
	}
	return out
}

func meanIntensity(events []HazardEvent) float64 {
	values := make([]float64, len(events))
	for i, e := range events {
		values[i] = e.Intensity
	}
	return mean(values)
}

func meanDuration(events []HazardEvent) float64 {
	values := make([]float64, len(events))
	for i, e := range events {
		values[i] = float64(e.Duration)
	}
	return mean(values)
}
