package domain

// RiskLevel buckets the average event intensity.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// insightWindow is the number of years compared at each end of the series.
const insightWindow = 5

// Insights are headline figures derived from an analysis.
type Insights struct {
	RiskLevel     RiskLevel `json:"risk_level"`
	PeakYear      *int      `json:"peak_year,omitempty"`
	PeakFrequency int       `json:"peak_frequency"`
	// RecentChange is the percent change of mean frequency over the last
	// insightWindow years against the first insightWindow years. It is nil
	// when the earlier window averaged zero events.
	RecentChange *float64 `json:"recent_change,omitempty"`
}

// DeriveInsights computes the risk level, peak year and recent change of an
// analysis. The first year with the highest frequency is the peak.
func DeriveInsights(a HazardAnalysis) Insights {
	var out Insights
	frequencies := make([]float64, len(a.YearlyData))
	for i, y := range a.YearlyData {
		frequencies[i] = float64(y.Frequency)
		if out.PeakYear == nil || y.Frequency > out.PeakFrequency {
			year := y.Year
			out.PeakYear = &year
			out.PeakFrequency = y.Frequency
		}
	}

	out.RiskLevel = riskLevel(a.AverageIntensity)

	if len(frequencies) > 0 {
		earlier := mean(frequencies[:min(insightWindow, len(frequencies))])
		recent := mean(frequencies[max(0, len(frequencies)-insightWindow):])
		if earlier > 0 {
			out.RecentChange = ptr(round1((recent - earlier) / earlier * 100))
		}
	}
	return out
}

func riskLevel(avgIntensity float64) RiskLevel {
	switch {
	case avgIntensity >= 6:
		return RiskVeryHigh
	case avgIntensity >= 4:
		return RiskHigh
	case avgIntensity >= 2:
		return RiskMedium
	default:
		return RiskLow
	}
}
