package domain

// HazardAnalysis is the summary of one hazard kind over a series.
type HazardAnalysis struct {
	TotalEvents      int                `json:"total_events"`
	AverageIntensity float64            `json:"average_intensity"`
	AverageDuration  float64            `json:"average_duration"`
	TrendDirection   TrendDirection     `json:"trend_direction"`
	TrendMagnitude   float64            `json:"trend_magnitude"`
	YearlyData       []YearlyHazardData `json:"yearly_data"`
}

// Analyze detects the requested hazard in a date-ordered series and
// summarizes it. Unknown hazard names are analyzed as heatwaves.
func Analyze(observations []Observation, hazardKind string) (HazardAnalysis, error) {
	report, err := AnalyzeDetailed(observations, hazardKind)
	if err != nil {
		return HazardAnalysis{}, err
	}
	return report.Analysis, nil
}

// AnalyzeDetailed is Analyze plus the threshold, the individual events and
// the derived insights.
func AnalyzeDetailed(observations []Observation, hazardKind string) (HazardReport, error) {
	kind := ParseHazardKind(hazardKind)
	detection, err := Detect(observations, kind)
	if err != nil {
		return HazardReport{}, err
	}

	analysis, trend := Summarize(observations, detection.Events)
	return HazardReport{
		Requested:  hazardKind,
		Kind:       detection.Kind,
		Threshold:  detection.Threshold,
		TrendSlope: trend.Slope,
		Analysis:   analysis,
		Events:     detection.Events,
		Insights:   DeriveInsights(analysis),
	}, nil
}

// Summarize aggregates detected events into the yearly series and trend.
func Summarize(observations []Observation, events []HazardEvent) (HazardAnalysis, Trend) {
	yearly := AggregateByYear(observations, events)

	frequencies := make([]int, len(yearly))
	for i, y := range yearly {
		frequencies[i] = y.Frequency
	}
	trend := EstimateTrend(frequencies)

	return HazardAnalysis{
		TotalEvents:      len(events),
		AverageIntensity: round1(meanIntensity(events)),
		AverageDuration:  round1(meanDuration(events)),
		TrendDirection:   trend.Direction,
		TrendMagnitude:   trend.Magnitude,
		YearlyData:       yearly,
	}, trend
}
