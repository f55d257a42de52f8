package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/climate-hazard-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/climate-hazard-etl/internal/adapter/kafka"
	"github.com/couchcryptid/climate-hazard-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/climate-hazard-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/climate-hazard-etl/internal/config"
	"github.com/couchcryptid/climate-hazard-etl/internal/domain"
	"github.com/couchcryptid/climate-hazard-etl/internal/observability"
	"github.com/couchcryptid/climate-hazard-etl/internal/pipeline"
	"github.com/couchcryptid/climate-hazard-etl/internal/synth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var source pipeline.ObservationSource
	if cfg.SynthEnabled {
		source = synth.NewGenerator()
		logger.Info("synthetic observations enabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(geocoder, source, metrics, logger, cfg.AnalysisConcurrency)

	var (
		loader pipeline.BatchLoader = writer
		store  *sqlite.Store
	)
	if cfg.ReportDBPath != "" {
		store, err = sqlite.Open(ctx, cfg.ReportDBPath, logger, metrics)
		if err != nil {
			logger.Error("failed to open report store", "error", err)
			os.Exit(1)
		}
		loader = pipeline.NewTeeLoader(writer, store, logger)
	}

	p := pipeline.New(reader, transformer, loader, logger, metrics, cfg.BatchSize)

	var reports httpadapter.ReportStore
	if store != nil {
		reports = store
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, transformer, reports, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("report store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
