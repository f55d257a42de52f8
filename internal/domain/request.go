package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RawEvent is a request message as consumed from the source topic. Commit
// acknowledges it once the report is loaded or the message is skipped.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// AnalysisRequest asks for one or more hazard analyses of a region. It
// either carries its own observations or a year range for the configured
// observation source to fill.
type AnalysisRequest struct {
	ID     string `json:"id,omitempty" validate:"max=128"`
	Region Region `json:"region"`

	// HazardTypes lists the hazards to analyze. HazardType is accepted for
	// single-hazard requests; when both are empty a heatwave analysis runs.
	HazardTypes []string `json:"hazard_types,omitempty" validate:"max=8,dive,max=64"`
	HazardType  string   `json:"hazard_type,omitempty" validate:"max=64"`

	StartYear    int           `json:"start_year,omitempty" validate:"omitempty,gte=1800,lte=2200"`
	EndYear      int           `json:"end_year,omitempty" validate:"omitempty,gte=1800,lte=2200,gtefield=StartYear"`
	Observations []Observation `json:"observations,omitempty"`
}

// Kinds returns the requested hazard names in request order.
func (r AnalysisRequest) Kinds() []string {
	switch {
	case len(r.HazardTypes) > 0:
		return r.HazardTypes
	case r.HazardType != "":
		return []string{r.HazardType}
	default:
		return []string{string(Heatwave)}
	}
}

// Validate reports every structural problem with the request wrapped in
// ErrInvalidRequest.
func (r AnalysisRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: field %s failed %q", ErrInvalidRequest, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if r.Region.Name == "" && !r.Region.HasCoordinates() {
		return fmt.Errorf("%w: region needs a name or coordinates", ErrInvalidRequest)
	}
	if len(r.Observations) == 0 {
		if r.StartYear == 0 || r.EndYear == 0 {
			return fmt.Errorf("%w: observations or a start and end year are required", ErrInvalidRequest)
		}
		return nil
	}
	if err := ValidateSeries(r.Observations); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// ParseAnalysisRequest decodes and validates a request message. The message
// key is used as the request ID when the body has none.
func ParseAnalysisRequest(raw RawEvent) (AnalysisRequest, error) {
	var req AnalysisRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return AnalysisRequest{}, fmt.Errorf("%w: parse body: %w", ErrInvalidRequest, err)
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	if err := req.Validate(); err != nil {
		return AnalysisRequest{}, err
	}
	return req, nil
}
