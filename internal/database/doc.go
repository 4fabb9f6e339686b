// Package database provides SQLite-based storage for fareplot.
//
// This package implements the PriceDB, which stores:
//   - Every scraped observation, mirrored from the CSV history
//   - A summary of each scrape run
//
// The CSV remains the canonical history that charts are built from. The
// database answers the queries the CSV is awkward for: the two latest prices
// of a series for `fareplot compare`, the list of tracked series, and the
// outcome of recent runs.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode lets `serve` read while a scheduled scrape writes
package database
