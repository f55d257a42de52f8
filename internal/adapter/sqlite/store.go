// Package sqlite keeps a local copy of analysis reports so they can be served
// over HTTP without replaying the sink topic.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/couchcryptid/climate-hazard-etl/internal/domain"
	"github.com/couchcryptid/climate-hazard-etl/internal/observability"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id           TEXT PRIMARY KEY,
	region       TEXT NOT NULL,
	hazard_types TEXT NOT NULL,
	processed_at TEXT NOT NULL,
	payload      BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS reports_processed_at ON reports (processed_at DESC);
`

// Store persists serialized reports in a SQLite database. It implements
// pipeline.BatchLoader.
type Store struct {
	db      *sql.DB
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string, logger *slog.Logger, metrics *observability.Metrics) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create report store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open report store: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init report store: %w", err)
		}
	}

	logger.Info("report store opened", "path", path)
	return &Store{db: db, logger: logger, metrics: metrics}, nil
}

// LoadBatch stores every report in the batch in one transaction. A report
// that is already stored is replaced.
func (s *Store) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if len(events) == 0 {
		return nil
	}
	if err := s.insert(ctx, events); err != nil {
		s.metrics.ReportStoreErrors.Inc()
		return err
	}
	s.metrics.ReportsStored.Add(float64(len(events)))
	return nil
}

func (s *Store) insert(ctx context.Context, events []domain.OutputEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin report tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reports (id, region, hazard_types, processed_at, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			region = excluded.region,
			hazard_types = excluded.hazard_types,
			processed_at = excluded.processed_at,
			payload = excluded.payload`)
	if err != nil {
		return fmt.Errorf("prepare report insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx,
			string(ev.Key), ev.Headers["region"], ev.Headers["hazard_types"], ev.Headers["processed_at"], ev.Value,
		); err != nil {
			return fmt.Errorf("insert report %s: %w", ev.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reports: %w", err)
	}
	return nil
}

// GetReport returns the stored report with the given ID.
func (s *Store) GetReport(ctx context.Context, id string) (domain.AnalysisReport, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM reports WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AnalysisReport{}, domain.ErrReportNotFound
	}
	if err != nil {
		return domain.AnalysisReport{}, fmt.Errorf("query report %s: %w", id, err)
	}
	return domain.DecodeReport(payload)
}

// ListReports returns the most recently processed reports, newest first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]domain.ReportSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, region, hazard_types, processed_at FROM reports ORDER BY processed_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	summaries := []domain.ReportSummary{}
	for rows.Next() {
		var (
			sum         domain.ReportSummary
			processedAt string
		)
		if err := rows.Scan(&sum.ID, &sum.Region, &sum.HazardTypes, &processedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, processedAt); err == nil {
			sum.ProcessedAt = t
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
