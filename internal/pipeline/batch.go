package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/fareplot/internal/model"
)

// DefaultConcurrency is the number of lookups run at once.
const DefaultConcurrency = 4

// BatchProcessor runs one pipeline per query concurrently.
//
// Design decision: errgroup.SetLimit bounds concurrency instead of a worker
// pool. Each query gets its own goroutine but only concurrency of them run
// at the same time, which keeps the request rate against the booking site
// low.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each query, so steps can
	// carry per-route settings such as headers and cookies.
	pipelineFactory func(q model.SearchQuery) *Pipeline

	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent lookups.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithClock sets the capture time source.
func WithClock(now func() time.Time) BatchOption {
	return func(b *BatchProcessor) {
		b.now = now
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func(q model.SearchQuery) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs every query and returns the runs in query order.
// Runs that failed keep their error in Run.Err; the returned error is
// non-nil only when ctx was canceled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, queries []model.SearchQuery) ([]*Run, error) {
	runs := make([]*Run, len(queries))
	err := bp.ProcessBatchWithCallback(ctx, queries, func(run *Run, i int) {
		runs[i] = run
	})
	return runs, err
}

// ProcessBatchWithCallback runs every query and calls callback with each
// finished run and its query index. callback is called from worker
// goroutines, each index exactly once.
func (bp *BatchProcessor) ProcessBatchWithCallback(ctx context.Context, queries []model.SearchQuery, callback func(run *Run, index int)) error {
	bp.logger.Info("starting batch", "routes", len(queries), "concurrency", bp.concurrency)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, q := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			run := NewRun(q, bp.now())
			if err := bp.pipelineFactory(q).Execute(gctx, run); err != nil {
				bp.logger.Warn("run failed", "route", q.Label(), "error", err)
			}
			callback(run, i)

			// Only cancellation aborts the batch.
			return ctx.Err()
		})
	}

	err := g.Wait()
	bp.logger.Info("batch complete", "routes", len(queries), "elapsed", time.Since(start).Round(time.Millisecond))
	return err
}

// Summarize counts runs by observation status. Runs that never produced an
// observation status are not counted.
func Summarize(runs []*Run) map[model.Status]int {
	out := make(map[model.Status]int)
	for _, r := range runs {
		if r == nil || r.Observation.Status == "" {
			continue
		}
		out[r.Observation.Status]++
	}
	return out
}
