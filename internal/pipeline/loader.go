package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/climate-hazard-etl/internal/domain"
)

// TeeLoader loads every batch into a primary destination and then copies it
// to a secondary one. Only primary failures are returned; the pipeline
// retries those. Secondary failures are logged and the batch still counts
// as loaded.
type TeeLoader struct {
	primary   BatchLoader
	secondary BatchLoader
	logger    *slog.Logger
}

// NewTeeLoader creates a TeeLoader. A nil secondary makes it a pass-through.
func NewTeeLoader(primary, secondary BatchLoader, logger *slog.Logger) *TeeLoader {
	return &TeeLoader{primary: primary, secondary: secondary, logger: logger}
}

func (t *TeeLoader) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if err := t.primary.LoadBatch(ctx, events); err != nil {
		return err
	}
	if t.secondary == nil {
		return nil
	}
	if err := t.secondary.LoadBatch(ctx, events); err != nil {
		t.logger.Warn("secondary load failed", "error", err, "batch_size", len(events))
	}
	return nil
}
