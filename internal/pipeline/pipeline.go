package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/fareplot/internal/model"
	"github.com/nao1215/fareplot/internal/scraper"
)

// Run carries one lookup through the pipeline.
type Run struct {
	// Query is the search being tracked.
	Query model.SearchQuery

	// Observation is the row recorded for this lookup.
	Observation model.Observation

	// Result is the raw scraper outcome.
	Result scraper.Result

	// Steps lists the steps that completed, in order.
	Steps []string

	// Err is the error that stopped the run, if any.
	Err error
}

// NewRun starts a run for q captured at now.
func NewRun(q model.SearchQuery, now time.Time) *Run {
	return &Run{
		Query:       q,
		Observation: model.NewObservation(q, now),
	}
}

// Step is one stage of a run.
//
// Design decision: Steps are an interface rather than plain functions so
// they can carry their collaborators (scraper, CSV path, database) and a
// name for logging.
type Step interface {
	// Do executes the step. Lookup failures are recorded in the run;
	// the returned error is reserved for failures that should stop it.
	Do(ctx context.Context, run *Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps executing later steps after one fails.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to run the remaining steps
// after a step fails, e.g. to still write the CSV when the database is
// locked.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given steps and options.
func New(steps []Step, opts ...Option) *Pipeline {
	p := &Pipeline{steps: steps}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// Execute runs all steps in sequence.
// Cancellation is checked before each step; steps handle their own timeouts.
// It returns the first step error unless continueOnError is set, in which
// case the last error is kept in run.Err and nil is returned.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", err)
			run.Err = err
			return err
		}

		p.logger.Debug("executing step", "step", step.Name(), "route", run.Query.Label())

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed", "step", step.Name(), "route", run.Query.Label(), "error", err)
			run.Err = err
			if !p.continueOnError {
				return err
			}
			continue
		}
		run.Steps = append(run.Steps, step.Name())
	}
	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
