package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/climate-hazard-etl/internal/domain"
)

// Analyzer runs an analysis request synchronously.
type Analyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisReport, error)
}

// ReportStore reads previously stored reports.
type ReportStore interface {
	GetReport(ctx context.Context, id string) (domain.AnalysisReport, error)
	ListReports(ctx context.Context, limit int) ([]domain.ReportSummary, error)
}

// Server exposes the analysis API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	analyzer   Analyzer
	reports    ReportStore
	logger     *slog.Logger
}

// NewServer creates the HTTP server. The analysis routes are mounted only
// when analyzer is non-nil, the report routes only when reports is non-nil.
func NewServer(addr string, ready sharedobs.ReadinessChecker, analyzer Analyzer, reports ReportStore, logger *slog.Logger) *Server {
	s := &Server{
		analyzer: analyzer,
		reports:  reports,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(api chi.Router) {
		api.Get("/regions", s.handleRegions)
		api.Get("/hazards", s.handleHazards)
		if analyzer != nil {
			api.Post("/analyses", s.handleAnalyze)
		}
		if reports != nil {
			api.Get("/reports", s.handleListReports)
			api.Get("/reports/{id}", s.handleGetReport)
			api.Get("/reports/{id}/yearly.csv", s.handleReportCSV)
		}
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      gzhttp.GzipHandler(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
