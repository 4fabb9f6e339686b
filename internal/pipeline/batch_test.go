package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/fareplot/internal/model"
	"github.com/nao1215/fareplot/internal/scraper"
)

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func(model.SearchQuery) *Pipeline { return New(nil) })
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("concurrency = %d, want %d", bp.concurrency, DefaultConcurrency)
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func(model.SearchQuery) *Pipeline { return New(nil) }, WithConcurrency(0))
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("concurrency = %d", bp.concurrency)
		}
		bp = NewBatchProcessor(func(model.SearchQuery) *Pipeline { return New(nil) }, WithConcurrency(2))
		if bp.concurrency != 2 {
			t.Errorf("concurrency = %d, want 2", bp.concurrency)
		}
	})
}

// concurrencyStep records the peak number of simultaneous runs.
type concurrencyStep struct {
	active, peak atomic.Int32
}

func (s *concurrencyStep) Name() string { return "probe" }

func (s *concurrencyStep) Do(_ context.Context, run *Run) error {
	n := s.active.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	s.active.Add(-1)
	run.Observation.Status = model.StatusOK
	return nil
}

// TestBatchProcessorProcessBatch tests concurrent processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("keeps query order and bounds concurrency", func(t *testing.T) {
		t.Parallel()

		probe := &concurrencyStep{}
		bp := NewBatchProcessor(func(model.SearchQuery) *Pipeline {
			return New([]Step{probe}, WithLogger(quietLogger()))
		}, WithConcurrency(2), WithBatchLogger(quietLogger()))

		queries := []model.SearchQuery{testQuery("BGY"), testQuery("FCO"), testQuery("DUB"), testQuery("AGP"), testQuery("CIA")}
		runs, err := bp.ProcessBatch(context.Background(), queries)
		if err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}
		for i, r := range runs {
			if r == nil || r.Query.Destination != queries[i].Destination {
				t.Errorf("run %d = %+v", i, r)
			}
		}
		if peak := probe.peak.Load(); peak > 2 {
			t.Errorf("peak concurrency = %d, want <= 2", peak)
		}
		if got := Summarize(runs)[model.StatusOK]; got != 5 {
			t.Errorf("ok runs = %d, want 5", got)
		}
	})

	t.Run("failed lookups do not abort the batch", func(t *testing.T) {
		t.Parallel()

		fetcher := &fakeFetcher{results: map[string]scraper.Result{
			"BGY": {Price: "£10", Currency: "GBP", Status: model.StatusOK},
			"FCO": {Currency: "GBP", Status: model.StatusFetchError, Notes: "HTTP 403"},
		}}
		bp := NewBatchProcessor(func(model.SearchQuery) *Pipeline {
			return New([]Step{NewScrapeStep(fetcher, quietLogger())}, WithLogger(quietLogger()))
		}, WithBatchLogger(quietLogger()))

		runs, err := bp.ProcessBatch(context.Background(), []model.SearchQuery{testQuery("BGY"), testQuery("FCO"), testQuery("DUB")})
		if err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}
		sum := Summarize(runs)
		if sum[model.StatusOK] != 1 || sum[model.StatusFetchError] != 1 || sum[model.StatusMissingPrice] != 1 {
			t.Errorf("summary = %v", sum)
		}
	})

	t.Run("stamps runs with the clock", func(t *testing.T) {
		t.Parallel()

		at := time.Date(2026, 7, 1, 9, 0, 0, 500, time.UTC)
		bp := NewBatchProcessor(func(model.SearchQuery) *Pipeline { return New(nil) },
			WithClock(func() time.Time { return at }), WithBatchLogger(quietLogger()))

		runs, err := bp.ProcessBatch(context.Background(), []model.SearchQuery{testQuery("BGY")})
		if err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}
		if !runs[0].Observation.TimestampUTC.Equal(at.Truncate(time.Second)) {
			t.Errorf("timestamp = %v", runs[0].Observation.TimestampUTC)
		}
	})

	t.Run("cancellation is reported", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		bp := NewBatchProcessor(func(model.SearchQuery) *Pipeline { return New(nil) }, WithBatchLogger(quietLogger()))

		if _, err := bp.ProcessBatch(ctx, []model.SearchQuery{testQuery("BGY")}); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}
