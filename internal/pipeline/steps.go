package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/fareplot/internal/model"
	"github.com/nao1215/fareplot/internal/scraper"
	"github.com/nao1215/fareplot/internal/series"
)

// Step names.
const (
	StepScrape    = "scrape"
	StepRecordCSV = "record-csv"
	StepRecordDB  = "record-db"
)

// Fetcher looks up the price of a search. *scraper.Scraper implements it.
type Fetcher interface {
	FetchReturnPrice(ctx context.Context, q model.SearchQuery) (scraper.Result, error)
}

// Recorder stores observations. *database.PriceDB implements it.
type Recorder interface {
	InsertObservation(ctx context.Context, obs model.Observation) error
}

// ScrapeStep fetches the price and fills the observation.
type ScrapeStep struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewScrapeStep creates a scrape step.
func NewScrapeStep(fetcher Fetcher, logger *slog.Logger) *ScrapeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScrapeStep{fetcher: fetcher, logger: logger}
}

// Name returns the step name.
func (s *ScrapeStep) Name() string { return StepScrape }

// Do executes the lookup.
func (s *ScrapeStep) Do(ctx context.Context, run *Run) error {
	result, err := s.fetcher.FetchReturnPrice(ctx, run.Query)
	if err != nil {
		return fmt.Errorf("lookup of %s aborted: %w", run.Query.Label(), err)
	}
	run.Result = result
	result.Apply(&run.Observation)

	if result.Status.OK() {
		s.logger.Info("price found",
			"route", run.Query.Label(),
			"price", result.Price,
			"departure", run.Observation.DepartureDate,
		)
	} else {
		s.logger.Warn("price not found",
			"route", run.Query.Label(),
			"status", result.Status,
			"notes", result.Notes,
			"debug_file", result.DebugFile,
		)
	}
	return nil
}

// RecordCSVStep appends the observation to the CSV time series.
type RecordCSVStep struct {
	path string
}

// NewRecordCSVStep creates a step appending to the CSV file at path.
func NewRecordCSVStep(path string) *RecordCSVStep {
	return &RecordCSVStep{path: path}
}

// Name returns the step name.
func (s *RecordCSVStep) Name() string { return StepRecordCSV }

// Do appends the observation.
func (s *RecordCSVStep) Do(_ context.Context, run *Run) error {
	return series.Append(s.path, run.Observation)
}

// RecordDBStep mirrors the observation into the history database.
type RecordDBStep struct {
	recorder Recorder
}

// NewRecordDBStep creates a step writing to recorder.
func NewRecordDBStep(recorder Recorder) *RecordDBStep {
	return &RecordDBStep{recorder: recorder}
}

// Name returns the step name.
func (s *RecordDBStep) Name() string { return StepRecordDB }

// Do inserts the observation.
func (s *RecordDBStep) Do(ctx context.Context, run *Run) error {
	return s.recorder.InsertObservation(ctx, run.Observation)
}
