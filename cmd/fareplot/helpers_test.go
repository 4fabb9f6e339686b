package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/fareplot/internal/model"
	"github.com/nao1215/fareplot/internal/series"
)

// runCLI executes the root command with args and returns its stdout.
// The log file is disabled so tests do not write into the package directory.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--log-file", ""))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

// observation returns a priced STN-BGY observation captured on 2026-07-<day>.
func observation(day int, price string) model.Observation {
	return model.Observation{
		TimestampUTC:  time.Date(2026, 7, day, 6, 0, 0, 0, time.UTC),
		Origin:        "STN",
		Destination:   "BGY",
		DepartureDate: "2026-08-22T06:30",
		ReturnDate:    "2026-08-29",
		Price:         price,
		Currency:      "GBP",
		Status:        model.StatusOK,
	}
}

// writeCSV writes a small time series with two departures and one failed
// lookup and returns its path.
func writeCSV(t *testing.T, dir string) string {
	t.Helper()

	fco := observation(3, "€51.00")
	fco.Destination = "FCO"
	fco.DepartureDate = "2026-09-01"
	fco.Currency = "EUR"

	failed := observation(3, "")
	failed.Status = model.StatusTimeout

	path := filepath.Join(dir, "data", "flight_prices.csv")
	if err := series.Append(path,
		observation(1, "£20.00"),
		observation(2, "£25.00"),
		failed,
		fco,
	); err != nil {
		t.Fatalf("failed to write CSV: %v", err)
	}
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
