package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"

	"github.com/couchcryptid/climate-hazard-etl/internal/domain"
	"github.com/couchcryptid/climate-hazard-etl/internal/pipeline"
	"github.com/couchcryptid/climate-hazard-etl/internal/synth"
)

const (
	maxRequestBody   = 16 << 20
	defaultListLimit = 20
	maxListLimit     = 100
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, domain.PresetRegions())
}

func (s *Server) handleHazards(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, domain.HazardKinds())
}

// handleAnalyze runs a request and returns the report, or the yearly table
// of one hazard as CSV when format=csv.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req domain.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, err)
			return
		}
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("%w: parse body: %w", domain.ErrInvalidRequest, err))
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	report, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		s.writeCSV(w, r, report)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("limit must be 1-%d", maxListLimit))
			return
		}
		limit = n
	}

	summaries, err := s.reports.ListReports(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.writeCSV(w, r, report)
}

// writeCSV writes the yearly table of the hazard named by the hazard query
// parameter, or of the first hazard when none is named.
func (s *Server) writeCSV(w http.ResponseWriter, r *http.Request, report domain.AnalysisReport) {
	name := r.URL.Query().Get("hazard")
	hazard, ok := report.Hazard(name)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("report has no hazard %q", name))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(hazard.Kind)+"-yearly.csv"))
	w.WriteHeader(http.StatusOK)
	if err := domain.WriteYearlyCSV(w, hazard.Analysis.YearlyData); err != nil {
		s.logger.Warn("write csv failed", "report_id", report.ID, "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	sharedobs.WriteJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, pipeline.ErrNoObservations),
		errors.Is(err, synth.ErrInvalidRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
