package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/climate-hazard-etl/internal/domain"
	"github.com/couchcryptid/climate-hazard-etl/internal/observability"
)

// ErrNoObservations is returned when a request carries no observations and
// no ObservationSource is configured to provide them.
var ErrNoObservations = errors.New("request has no observations and no observation source is configured")

// ObservationSource supplies a daily series for a region and year range.
type ObservationSource interface {
	Observations(ctx context.Context, region domain.Region, startYear, endYear int) ([]domain.Observation, error)
}

// HazardTransformer implements Transformer by running every requested
// hazard analysis over the request's series.
type HazardTransformer struct {
	geocoder    domain.Geocoder
	source      ObservationSource
	metrics     *observability.Metrics
	logger      *slog.Logger
	concurrency int
}

// NewTransformer creates a HazardTransformer. A nil geocoder disables region
// geocoding; a nil source rejects requests that carry no observations.
func NewTransformer(geocoder domain.Geocoder, source ObservationSource, metrics *observability.Metrics, logger *slog.Logger, concurrency int) *HazardTransformer {
	return &HazardTransformer{
		geocoder:    geocoder,
		source:      source,
		metrics:     metrics,
		logger:      logger,
		concurrency: max(1, concurrency),
	}
}

// Transform parses the request, analyzes it and serializes the report.
func (t *HazardTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseAnalysisRequest(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	report, err := t.Analyze(ctx, req)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	return domain.SerializeReport(report)
}

// Analyze resolves the region, obtains the series and runs each requested
// hazard concurrently. Hazards come back in request order.
func (t *HazardTransformer) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisReport, error) {
	region := domain.ResolveRegion(ctx, req.Region, t.geocoder, t.logger)

	observations, err := t.observations(ctx, req, region)
	if err != nil {
		return domain.AnalysisReport{}, err
	}

	kinds := req.Kinds()
	hazards := make([]domain.HazardReport, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	for i, kind := range kinds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			hazard, err := domain.AnalyzeDetailed(observations, kind)
			if err != nil {
				t.metrics.AnalysisErrors.WithLabelValues(string(domain.ParseHazardKind(kind))).Inc()
				return fmt.Errorf("analyze %s: %w", kind, err)
			}
			label := string(hazard.Kind)
			t.metrics.AnalysisDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
			t.metrics.AnalysesTotal.WithLabelValues(label).Inc()
			t.metrics.EventsDetected.WithLabelValues(label).Add(float64(hazard.Analysis.TotalEvents))
			hazards[i] = hazard
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.AnalysisReport{}, err
	}

	report := domain.NewAnalysisReport(req, region, observations, hazards)
	t.logger.Debug("analysis complete",
		"report_id", report.ID,
		"region", region.Name,
		"geo_source", region.GeoSource,
		"observations", report.ObservationCount,
		"hazards", len(hazards),
	)
	return report, nil
}

func (t *HazardTransformer) observations(ctx context.Context, req domain.AnalysisRequest, region domain.Region) ([]domain.Observation, error) {
	if len(req.Observations) > 0 {
		return req.Observations, nil
	}
	if t.source == nil {
		return nil, ErrNoObservations
	}
	observations, err := t.source.Observations(ctx, region, req.StartYear, req.EndYear)
	if err != nil {
		return nil, fmt.Errorf("load observations for %s: %w", region.Name, err)
	}
	return observations, nil
}
