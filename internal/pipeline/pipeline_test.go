package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/fareplot/internal/model"
	"github.com/nao1215/fareplot/internal/scraper"
	"github.com/nao1215/fareplot/internal/series"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testQuery(dest string) model.SearchQuery {
	return model.SearchQuery{
		Origin:      "STN",
		Destination: dest,
		DepartDate:  "2026-08-22",
		ReturnDate:  "2026-08-29",
		Adults:      1,
		Currency:    "GBP",
	}
}

// fakeFetcher returns canned results keyed by destination.
type fakeFetcher struct {
	results map[string]scraper.Result
	err     error
}

func (f *fakeFetcher) FetchReturnPrice(_ context.Context, q model.SearchQuery) (scraper.Result, error) {
	if f.err != nil {
		return scraper.Result{}, f.err
	}
	if r, ok := f.results[q.Destination]; ok {
		return r, nil
	}
	return scraper.Result{Currency: q.Currency, Status: model.StatusMissingPrice, Notes: "no flight cards"}, nil
}

type fakeRecorder struct {
	mu   sync.Mutex
	rows []model.Observation
	err  error
}

func (r *fakeRecorder) InsertObservation(_ context.Context, obs model.Observation) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, obs)
	return nil
}

type namedStep struct {
	name string
	err  error
}

func (s namedStep) Name() string                  { return s.name }
func (s namedStep) Do(context.Context, *Run) error { return s.err }

// TestPipelineExecute tests step sequencing and error handling.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		p := New([]Step{namedStep{name: "a"}, namedStep{name: "b"}}, WithLogger(quietLogger()))
		p.AddStep(namedStep{name: "c"})
		run := NewRun(testQuery("BGY"), time.Now())

		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !slices.Equal(run.Steps, []string{"a", "b", "c"}) {
			t.Errorf("steps = %v", run.Steps)
		}
		if !slices.Equal(p.StepNames(), run.Steps) {
			t.Errorf("StepNames() = %v", p.StepNames())
		}
	})

	t.Run("stops on the first error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		p := New([]Step{namedStep{name: "a", err: boom}, namedStep{name: "b"}}, WithLogger(quietLogger()))
		run := NewRun(testQuery("BGY"), time.Now())

		if err := p.Execute(context.Background(), run); !errors.Is(err, boom) {
			t.Errorf("err = %v, want boom", err)
		}
		if len(run.Steps) != 0 || !errors.Is(run.Err, boom) {
			t.Errorf("run = %+v", run)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		p := New([]Step{namedStep{name: "a", err: boom}, namedStep{name: "b"}},
			WithLogger(quietLogger()), WithContinueOnError(true))
		run := NewRun(testQuery("BGY"), time.Now())

		if err := p.Execute(context.Background(), run); err != nil {
			t.Errorf("Execute() error = %v", err)
		}
		if !slices.Equal(run.Steps, []string{"b"}) || !errors.Is(run.Err, boom) {
			t.Errorf("run = %+v", run)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := New([]Step{namedStep{name: "a"}}, WithLogger(quietLogger()))
		run := NewRun(testQuery("BGY"), time.Now())

		if err := p.Execute(ctx, run); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

// TestDefaultSteps tests scrape, CSV and database steps together.
func TestDefaultSteps(t *testing.T) {
	t.Parallel()

	csvPath := filepath.Join(t.TempDir(), "data", "prices.csv")
	fetcher := &fakeFetcher{results: map[string]scraper.Result{
		"BGY": {
			Price:    "£24.99",
			Currency: "GBP",
			Status:   model.StatusOK,
			Card:     model.FlightCard{Price: "£24.99", Times: []string{"06:30", "09:45"}},
		},
	}}
	rec := &fakeRecorder{}
	p := New([]Step{
		NewScrapeStep(fetcher, quietLogger()),
		NewRecordCSVStep(csvPath),
		NewRecordDBStep(rec),
	}, WithLogger(quietLogger()))

	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	for _, dest := range []string{"BGY", "FCO"} {
		if err := p.Execute(context.Background(), NewRun(testQuery(dest), now)); err != nil {
			t.Fatalf("Execute(%s) error = %v", dest, err)
		}
	}

	rows, err := series.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].DepartureDate != "2026-08-22T06:30" || rows[0].ArrivalDate != "2026-08-22T09:45" || rows[0].Price != "£24.99" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Status != model.StatusMissingPrice || rows[1].Price != "" {
		t.Errorf("row 1 = %+v", rows[1])
	}
	if len(rec.rows) != 2 {
		t.Errorf("database rows = %d, want 2", len(rec.rows))
	}
}

// TestScrapeStepAbort tests that fetcher errors stop the run.
func TestScrapeStepAbort(t *testing.T) {
	t.Parallel()

	csvPath := filepath.Join(t.TempDir(), "prices.csv")
	p := New([]Step{
		NewScrapeStep(&fakeFetcher{err: context.Canceled}, quietLogger()),
		NewRecordCSVStep(csvPath),
	}, WithLogger(quietLogger()))

	run := NewRun(testQuery("BGY"), time.Now())
	if err := p.Execute(context.Background(), run); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	rows, err := series.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %d, want none", len(rows))
	}
}
