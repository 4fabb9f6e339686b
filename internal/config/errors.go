package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// Config.ValidateReport.
//
// Design decision: Package-level sentinel errors let callers use errors.Is
// while the message stays human-readable.
var (
	// ErrNoRoute is returned when no route is configured or given by flags.
	ErrNoRoute = errors.New("no route specified: use --origin/--destination/--depart-date or add routes to .fareplot")

	// ErrInvalidRoute is returned when a route lacks an airport or has a
	// malformed date.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrInvalidTimeout is returned when the page timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidInterval is returned when the scrape interval is negative.
	// Zero means scrape once.
	ErrInvalidInterval = errors.New("invalid interval: must be non-negative")

	// ErrInvalidCurrency is returned when a currency is not an ISO 4217 code.
	ErrInvalidCurrency = errors.New("invalid currency: must be an ISO 4217 code such as GBP")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
