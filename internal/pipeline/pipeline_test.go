package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-hazard-etl/internal/domain"
	"github.com/couchcryptid/climate-hazard-etl/internal/observability"
	"github.com/couchcryptid/climate-hazard-etl/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	mu      sync.Mutex
	batches [][]domain.RawEvent
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	m.mu.Lock()
	if len(m.batches) > 0 {
		b := m.batches[0]
		m.batches = m.batches[1:]
		m.mu.Unlock()
		return b, nil
	}
	m.mu.Unlock()

	// block until context cancelled to simulate waiting for messages
	<-ctx.Done()
	return nil, ctx.Err()
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	if m.err != nil {
		return domain.OutputEvent{}, m.err
	}
	return domain.OutputEvent{Key: raw.Key, Value: raw.Value}, nil
}

type mockLoader struct {
	mu       sync.Mutex
	loaded   []domain.OutputEvent
	failures int
	calls    int
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failures > 0 {
		m.failures--
		return errors.New("broker unavailable")
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func (m *mockLoader) snapshot() []domain.OutputEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OutputEvent(nil), m.loaded...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rawRequest(key string, commits *atomic.Int32) domain.RawEvent {
	return domain.RawEvent{
		Key:   []byte(key),
		Value: []byte(`{"region":{"name":"Miami, FL"}}`),
		Topic: "hazard-analysis-requests",
		Commit: func(context.Context) error {
			if commits != nil {
				commits.Add(1)
			}
			return nil
		},
	}
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	var commits atomic.Int32
	ext := &mockExtractor{batches: [][]domain.RawEvent{{rawRequest("a", &commits), rawRequest("b", &commits)}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), metrics, 10)
	require.Error(t, p.CheckReadiness(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))

	loaded := ldr.snapshot()
	require.Len(t, loaded, 2)
	assert.Equal(t, []byte("a"), loaded[0].Key)
	assert.Equal(t, []byte("b"), loaded[1].Key)
	assert.Equal(t, int32(2), commits.Load())
	assert.True(t, p.Ready())
	assert.NoError(t, p.CheckReadiness(context.Background()))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.MessagesConsumed))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.MessagesProduced))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.PipelineRunning))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{}, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.snapshot())
}

func TestPipeline_Run_TransformErrorCommitsAndSkips(t *testing.T) {
	var commits atomic.Int32
	ext := &mockExtractor{batches: [][]domain.RawEvent{{rawRequest("bad", &commits)}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{err: domain.ErrInvalidRequest}, ldr, discardLogger(), metrics, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.snapshot())
	assert.Zero(t, ldr.calls)
	assert.Equal(t, int32(1), commits.Load())
	assert.False(t, p.Ready())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.TransformErrors))
}

func TestPipeline_Run_LoadFailureBacksOff(t *testing.T) {
	var commits atomic.Int32
	ext := &mockExtractor{batches: [][]domain.RawEvent{
		{rawRequest("first", &commits)},
		{rawRequest("second", &commits)},
	}}
	ldr := &mockLoader{failures: 1}
	clock := clockwork.NewFakeClock()

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10,
		pipeline.WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	assert.False(t, p.Ready())

	clock.Advance(200 * time.Millisecond)

	require.Eventually(t, func() bool { return len(ldr.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []byte("second"), ldr.snapshot()[0].Key)
	assert.Equal(t, int32(1), commits.Load(), "failed batch is not committed")
	assert.True(t, p.Ready())
}

func TestPipeline_Run_StopsDuringBackoff(t *testing.T) {
	ext := &mockExtractor{batches: [][]domain.RawEvent{{rawRequest("a", nil)}}}
	clock := clockwork.NewFakeClock()
	p := pipeline.New(ext, &mockTransformer{}, &mockLoader{failures: 1}, discardLogger(), observability.NewMetricsForTesting(), 10,
		pipeline.WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline did not stop while backing off")
	}
}

func TestTeeLoader(t *testing.T) {
	primary := &mockLoader{}
	secondary := &mockLoader{failures: 1}
	tee := pipeline.NewTeeLoader(primary, secondary, discardLogger())

	events := []domain.OutputEvent{{Key: []byte("r1")}}
	require.NoError(t, tee.LoadBatch(context.Background(), events))
	assert.Len(t, primary.snapshot(), 1)
	assert.Empty(t, secondary.snapshot())

	require.NoError(t, tee.LoadBatch(context.Background(), events))
	assert.Len(t, secondary.snapshot(), 1)
}

func TestTeeLoader_PrimaryFailure(t *testing.T) {
	primary := &mockLoader{failures: 1}
	secondary := &mockLoader{}
	tee := pipeline.NewTeeLoader(primary, secondary, discardLogger())

	require.Error(t, tee.LoadBatch(context.Background(), []domain.OutputEvent{{Key: []byte("r1")}}))
	assert.Zero(t, secondary.calls)
}

func TestTeeLoader_NilSecondary(t *testing.T) {
	primary := &mockLoader{}
	tee := pipeline.NewTeeLoader(primary, nil, discardLogger())
	require.NoError(t, tee.LoadBatch(context.Background(), []domain.OutputEvent{{Key: []byte("r1")}}))
	assert.Len(t, primary.snapshot(), 1)
}
