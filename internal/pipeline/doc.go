// Package pipeline runs price lookups through a sequence of steps.
//
// One lookup is a Run: the search query, the observation being built and the
// raw scraper result. The default steps scrape the booking site, append the
// observation to the CSV time series and mirror it into the history
// database. BatchProcessor runs the configured routes concurrently with
// errgroup and a concurrency limit.
//
// Design decision: A failed lookup is not a pipeline error. The scrape step
// turns timeouts, missing prices and fetch errors into an observation with
// a non-ok status, and the recording steps store it like any other row so
// the time series shows the gap. Only context cancellation and storage
// failures stop a run.
package pipeline
