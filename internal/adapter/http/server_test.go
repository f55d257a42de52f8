package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/climate-hazard-etl/internal/adapter/http"
	"github.com/couchcryptid/climate-hazard-etl/internal/domain"
	"github.com/couchcryptid/climate-hazard-etl/internal/observability"
	"github.com/couchcryptid/climate-hazard-etl/internal/pipeline"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type stubAnalyzer struct {
	report domain.AnalysisReport
	err    error
	got    domain.AnalysisRequest
}

func (s *stubAnalyzer) Analyze(_ context.Context, req domain.AnalysisRequest) (domain.AnalysisReport, error) {
	s.got = req
	return s.report, s.err
}

type stubStore struct {
	reports map[string]domain.AnalysisReport
	limit   int
}

func (s *stubStore) GetReport(_ context.Context, id string) (domain.AnalysisReport, error) {
	r, ok := s.reports[id]
	if !ok {
		return domain.AnalysisReport{}, domain.ErrReportNotFound
	}
	return r, nil
}

func (s *stubStore) ListReports(_ context.Context, limit int) ([]domain.ReportSummary, error) {
	s.limit = limit
	out := []domain.ReportSummary{}
	for id, r := range s.reports {
		out = append(out, domain.ReportSummary{ID: id, Region: r.Region.Name})
	}
	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func cannedReport() domain.AnalysisReport {
	return domain.AnalysisReport{
		ID:     "report-1",
		Region: domain.Region{Name: "Phoenix, AZ"},
		Hazards: []domain.HazardReport{
			{
				Requested: "heatwave",
				Kind:      domain.Heatwave,
				Analysis: domain.HazardAnalysis{YearlyData: []domain.YearlyHazardData{
					{Year: 2000, Frequency: 2, Intensity: 3.5, Duration: 4},
				}},
				Events: []domain.HazardEvent{},
			},
			{
				Requested: "drought",
				Kind:      domain.Drought,
				Analysis: domain.HazardAnalysis{YearlyData: []domain.YearlyHazardData{
					{Year: 2000, Frequency: 1, Intensity: 6, Duration: 45},
				}},
				Events: []domain.HazardEvent{},
			},
		},
		ProcessedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestServer(readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, nil, nil, discardLogger())
}

func serve(t *testing.T, srv *httpadapter.Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(t, newTestServer(nil), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(t, newTestServer(nil), http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(t, newTestServer(fmt.Errorf("not ready yet")), http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(t, newTestServer(nil), http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRegionsEndpoint(t *testing.T) {
	rec := serve(t, newTestServer(nil), http.MethodGet, "/v1/regions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var regions []domain.Region
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regions))
	assert.Len(t, regions, len(domain.PresetRegions()))
}

func TestHazardsEndpoint(t *testing.T) {
	rec := serve(t, newTestServer(nil), http.MethodGet, "/v1/hazards", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["heatwave","drought","heavy_rainfall","cold_wave"]`, rec.Body.String())
}

func TestOptionalRoutesAbsent(t *testing.T) {
	srv := newTestServer(nil)

	assert.Equal(t, http.StatusNotFound, serve(t, srv, http.MethodGet, "/v1/reports/x", "").Code)
	assert.NotEqual(t, http.StatusOK, serve(t, srv, http.MethodPost, "/v1/analyses", `{}`).Code)
}

func TestAnalyze_ReturnsReport(t *testing.T) {
	analyzer := &stubAnalyzer{report: cannedReport()}
	srv := httpadapter.NewServer(":0", &mockReadiness{}, analyzer, nil, discardLogger())

	body := `{"id":"req-1","region":{"name":"Phoenix, AZ"},"hazard_types":["heatwave","drought"],"start_year":2000,"end_year":2001}`
	rec := serve(t, srv, http.MethodPost, "/v1/analyses", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report domain.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "report-1", report.ID)
	assert.Len(t, report.Hazards, 2)
	assert.Equal(t, "req-1", analyzer.got.ID)
	assert.Equal(t, []string{"heatwave", "drought"}, analyzer.got.Kinds())
}

func TestAnalyze_CSV(t *testing.T) {
	srv := httpadapter.NewServer(":0", &mockReadiness{}, &stubAnalyzer{report: cannedReport()}, nil, discardLogger())

	body := `{"region":{"name":"Phoenix, AZ"},"start_year":2000,"end_year":2001}`
	rec := serve(t, srv, http.MethodPost, "/v1/analyses?format=csv&hazard=drought", body)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, "Year,Frequency,Intensity,Duration\n2000,1,6,45\n", rec.Body.String())
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"malformed json", `{"region":`, nil, http.StatusBadRequest},
		{"missing region", `{"start_year":2000,"end_year":2001}`, nil, http.StatusBadRequest},
		{"no observations or years", `{"region":{"name":"Miami"}}`, nil, http.StatusBadRequest},
		{"empty input", `{"region":{"name":"Miami"},"start_year":2000,"end_year":2001}`, domain.ErrEmptyInput, http.StatusUnprocessableEntity},
		{"no source", `{"region":{"name":"Miami"},"start_year":2000,"end_year":2001}`, pipeline.ErrNoObservations, http.StatusUnprocessableEntity},
		{"internal", `{"region":{"name":"Miami"},"start_year":2000,"end_year":2001}`, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httpadapter.NewServer(":0", &mockReadiness{}, &stubAnalyzer{err: tt.err}, nil, discardLogger())
			rec := serve(t, srv, http.MethodPost, "/v1/analyses", tt.body)

			assert.Equal(t, tt.want, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	srv := httpadapter.NewServer(":0", &mockReadiness{}, &stubAnalyzer{}, nil, discardLogger())

	body := `{"id":"` + strings.Repeat("x", 17<<20) + `"}`
	rec := serve(t, srv, http.MethodPost, "/v1/analyses", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAnalyze_WithTransformer(t *testing.T) {
	transformer := pipeline.NewTransformer(nil, nil, observability.NewMetricsForTesting(), discardLogger(), 2)
	srv := httpadapter.NewServer(":0", &mockReadiness{}, transformer, nil, discardLogger())

	observations := make([]domain.Observation, 10)
	start := domain.NewDate(2000, time.January, 1)
	for i := range observations {
		observations[i] = domain.Observation{Date: start.AddDays(i), Temperature: 20, Humidity: 50, Precipitation: 1, WindSpeed: 3, Pressure: 1013}
	}
	payload, err := json.Marshal(domain.AnalysisRequest{
		Region:       domain.Region{Name: "miami"},
		HazardTypes:  []string{"heatwave", "heavy_rainfall"},
		Observations: observations,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyses", bytes.NewReader(payload)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report domain.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "Miami, FL", report.Region.Name)
	assert.Equal(t, domain.GeoSourcePreset, report.Region.GeoSource)
	assert.Equal(t, 10, report.ObservationCount)
	require.Len(t, report.Hazards, 2)
	assert.Equal(t, domain.Heatwave, report.Hazards[0].Kind)
	assert.Equal(t, domain.HeavyRainfall, report.Hazards[1].Kind)
	assert.Zero(t, report.Hazards[0].Analysis.TotalEvents)
}

func TestReports(t *testing.T) {
	store := &stubStore{reports: map[string]domain.AnalysisReport{"report-1": cannedReport()}}
	srv := httpadapter.NewServer(":0", &mockReadiness{}, nil, store, discardLogger())

	t.Run("get", func(t *testing.T) {
		rec := serve(t, srv, http.MethodGet, "/v1/reports/report-1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var report domain.AnalysisReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, "Phoenix, AZ", report.Region.Name)
	})

	t.Run("missing", func(t *testing.T) {
		rec := serve(t, srv, http.MethodGet, "/v1/reports/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("csv first hazard", func(t *testing.T) {
		rec := serve(t, srv, http.MethodGet, "/v1/reports/report-1/yearly.csv", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Year,Frequency,Intensity,Duration\n2000,2,3.5,4\n", rec.Body.String())
	})

	t.Run("csv unknown hazard", func(t *testing.T) {
		rec := serve(t, srv, http.MethodGet, "/v1/reports/report-1/yearly.csv?hazard=cold_wave", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list", func(t *testing.T) {
		rec := serve(t, srv, http.MethodGet, "/v1/reports?limit=5", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5, store.limit)

		var list []domain.ReportSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "report-1", list[0].ID)
	})

	t.Run("list bad limit", func(t *testing.T) {
		rec := serve(t, srv, http.MethodGet, "/v1/reports?limit=500", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
