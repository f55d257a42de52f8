package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// reportNamespace scopes the name-based UUIDs of reports.
var reportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:climate-hazard-etl:report"))

// HazardReport is the full result for one requested hazard.
type HazardReport struct {
	Requested  string         `json:"requested"`
	Kind       HazardKind     `json:"kind"`
	Threshold  float64        `json:"threshold"`
	TrendSlope float64        `json:"trend_slope"`
	Analysis   HazardAnalysis `json:"analysis"`
	Events     []HazardEvent  `json:"events"`
	Insights   Insights       `json:"insights"`
}

// AnalysisReport is the answer to an AnalysisRequest.
type AnalysisReport struct {
	ID               string         `json:"id"`
	RequestID        string         `json:"request_id,omitempty"`
	Region           Region         `json:"region"`
	StartDate        *Date          `json:"start_date,omitempty"`
	EndDate          *Date          `json:"end_date,omitempty"`
	ObservationCount int            `json:"observation_count"`
	Hazards          []HazardReport `json:"hazards"`
	ProcessedAt      time.Time      `json:"processed_at"`
}

// ReportSummary is a listing row for a stored report.
type ReportSummary struct {
	ID          string    `json:"id"`
	Region      string    `json:"region"`
	HazardTypes string    `json:"hazard_types"`
	ProcessedAt time.Time `json:"processed_at"`
}

// NewAnalysisReport assembles a report and stamps it with the current time.
// Hazards must be in request order.
func NewAnalysisReport(req AnalysisRequest, region Region, observations []Observation, hazards []HazardReport) AnalysisReport {
	report := AnalysisReport{
		RequestID:        req.ID,
		Region:           region,
		ObservationCount: len(observations),
		Hazards:          hazards,
		ProcessedAt:      clock.Now().UTC(),
	}
	if len(observations) > 0 {
		start, end := observations[0].Date, observations[len(observations)-1].Date
		report.StartDate = &start
		report.EndDate = &end
	}
	report.ID = ReportID(req.ID, region, report.StartDate, report.EndDate, req.Kinds())
	return report
}

// ReportID derives a stable ID so replays of the same request upsert the
// same row downstream.
func ReportID(requestID string, region Region, start, end *Date, kinds []string) string {
	span := "-"
	if start != nil && end != nil {
		span = start.String() + "/" + end.String()
	}
	input := fmt.Sprintf("%s|%s|%.4f|%.4f|%s|%s",
		requestID, region.Name, region.Lat, region.Lon, span, strings.Join(kinds, ","))
	return uuid.NewSHA1(reportNamespace, []byte(input)).String()
}

// Hazard returns the hazard report matching name, either as requested or by
// resolved kind. An empty name selects the first hazard.
func (r AnalysisReport) Hazard(name string) (HazardReport, bool) {
	for _, h := range r.Hazards {
		if name == "" || h.Requested == name || string(h.Kind) == name {
			return h, true
		}
	}
	return HazardReport{}, false
}

// OutputEvent is a serialized report bound for the sink.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SerializeReport converts a report into an OutputEvent for the sink.
func SerializeReport(report AnalysisReport) (OutputEvent, error) {
	value, err := json.Marshal(report)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize report: %w", err)
	}

	kinds := make([]string, len(report.Hazards))
	for i, h := range report.Hazards {
		kinds[i] = string(h.Kind)
	}

	return OutputEvent{
		Key:   []byte(report.ID),
		Value: value,
		Headers: map[string]string{
			"region":       report.Region.Name,
			"hazard_types": strings.Join(kinds, ","),
			"processed_at": report.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}

// DecodeReport parses a serialized report.
func DecodeReport(data []byte) (AnalysisReport, error) {
	var report AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		return AnalysisReport{}, fmt.Errorf("decode report: %w", err)
	}
	return report, nil
}
