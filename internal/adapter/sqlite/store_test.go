package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-hazard-etl/internal/domain"
	"github.com/couchcryptid/climate-hazard-etl/internal/observability"
)

func openTestStore(t *testing.T) (*Store, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "reports.db"), logger, metrics)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, metrics
}

func testReport(t *testing.T, id, region string, processedAt time.Time) domain.OutputEvent {
	t.Helper()
	report := domain.AnalysisReport{
		ID:               id,
		Region:           domain.Region{Name: region, Lat: 33.45, Lon: -112.07},
		ObservationCount: 365,
		Hazards: []domain.HazardReport{{
			Requested: "heatwave",
			Kind:      domain.Heatwave,
			Threshold: 41.2,
			Events:    []domain.HazardEvent{},
		}},
		ProcessedAt: processedAt,
	}
	ev, err := domain.SerializeReport(report)
	require.NoError(t, err)
	return ev
}

func TestStore_LoadAndGet(t *testing.T) {
	store, metrics := openTestStore(t)
	ctx := context.Background()
	processed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.LoadBatch(ctx, []domain.OutputEvent{testReport(t, "r-1", "Phoenix, AZ", processed)}))

	got, err := store.GetReport(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "Phoenix, AZ", got.Region.Name)
	assert.Equal(t, 365, got.ObservationCount)
	assert.True(t, processed.Equal(got.ProcessedAt))
	require.Len(t, got.Hazards, 1)
	assert.Equal(t, domain.Heatwave, got.Hazards[0].Kind)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReportsStored))
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := openTestStore(t)

	_, err := store.GetReport(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestStore_ReplayReplacesReport(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	first := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.LoadBatch(ctx, []domain.OutputEvent{testReport(t, "r-1", "Phoenix, AZ", first)}))
	require.NoError(t, store.LoadBatch(ctx, []domain.OutputEvent{testReport(t, "r-1", "Phoenix, AZ", first.Add(time.Hour))}))

	list, err := store.ListReports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, first.Add(time.Hour).Equal(list[0].ProcessedAt))
}

func TestStore_ListNewestFirst(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.LoadBatch(ctx, []domain.OutputEvent{
		testReport(t, "old", "Miami, FL", base),
		testReport(t, "new", "Denver, CO", base.Add(48*time.Hour)),
		testReport(t, "mid", "Seattle, WA", base.Add(24*time.Hour)),
	}))

	list, err := store.ListReports(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "Denver, CO", list[0].Region)
	assert.Equal(t, "heatwave", list[0].HazardTypes)
	assert.Equal(t, "mid", list[1].ID)
}

func TestStore_EmptyBatch(t *testing.T) {
	store, metrics := openTestStore(t)

	require.NoError(t, store.LoadBatch(context.Background(), nil))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.ReportsStored))

	list, err := store.ListReports(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_LoadAfterCloseFails(t *testing.T) {
	store, metrics := openTestStore(t)
	require.NoError(t, store.Close())

	err := store.LoadBatch(context.Background(), []domain.OutputEvent{testReport(t, "r-1", "Phoenix, AZ", time.Now())})
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReportStoreErrors))
}

func TestStore_CheckReadiness(t *testing.T) {
	store, _ := openTestStore(t)
	require.NoError(t, store.CheckReadiness(context.Background()))
}
