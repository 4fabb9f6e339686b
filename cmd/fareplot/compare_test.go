package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/nao1215/fareplot/internal/config"
	"github.com/nao1215/fareplot/internal/database"
	"github.com/nao1215/fareplot/internal/model"
	"github.com/nao1215/fareplot/internal/report"
	"github.com/nao1215/fareplot/internal/series"
)

// seedHistory imports the test CSV into a fresh database and returns its
// directory.
func seedHistory(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	obs, err := series.ReadFile(writeCSV(t, dir))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	dbDir := filepath.Join(dir, "db")
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()
	if _, err := db.Import(context.Background(), obs); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	return dbDir
}

// TestNewCompareCmd tests the compare command flags.
func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()
	for _, name := range []string{"list", "json", "markdown", "output", "db-dir"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
	if cmd.Use != "compare [route]" {
		t.Errorf("Use = %q", cmd.Use)
	}
}

// TestRunCompareCmd tests comparisons against a seeded history.
func TestRunCompareCmd(t *testing.T) {
	t.Parallel()

	dbDir := seedHistory(t)

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		out, err := runCLI(t, "compare", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("compare error = %v", err)
		}
		for _, want := range []string{"PRICE CHANGES", "STN → BGY (2026-08-22)", "+5.00 (+25.0%)", "up: 1  down: 0  unchanged: 0  new: 1"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("route filter", func(t *testing.T) {
		t.Parallel()

		out, err := runCLI(t, "compare", "stn-fco", "--db-dir", dbDir, "--json")
		if err != nil {
			t.Fatalf("compare error = %v", err)
		}
		var rep report.PriceReport
		if err := json.Unmarshal([]byte(out), &rep); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if len(rep.Changes) != 1 || rep.Changes[0].Key.RouteID() != "STN-FCO" || rep.Changes[0].Direction != model.DirectionNew {
			t.Errorf("changes = %+v", rep.Changes)
		}
	})

	t.Run("markdown to file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "reports", "changes.md")
		if _, err := runCLI(t, "compare", "--db-dir", dbDir, "--markdown", "-o", path); err != nil {
			t.Fatalf("compare error = %v", err)
		}
		content := readFile(t, path)
		if !strings.Contains(content, "## Price Changes") || !strings.Contains(content, "went up") {
			t.Errorf("markdown = %s", content)
		}
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		out, err := runCLI(t, "compare", "--list", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("compare error = %v", err)
		}
		if !strings.Contains(out, "Tracked departures:") || !strings.Contains(out, "2 price(s), latest 25.00 GBP") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		t.Parallel()

		out, err := runCLI(t, "compare", "MAN-AGP", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("compare error = %v", err)
		}
		if !strings.Contains(out, "No price history found.") {
			t.Errorf("output = %q", out)
		}
	})
}

func TestRunCompareCmdErrors(t *testing.T) {
	t.Parallel()

	t.Run("no history", func(t *testing.T) {
		t.Parallel()

		_, err := runCLI(t, "compare", "--db-dir", t.TempDir())
		if !errors.Is(err, errNoHistory) || !errors.Is(err, database.ErrNotFound) {
			t.Errorf("expected errNoHistory, got %v", err)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		_, err := runCLI(t, "compare", "--db-dir", t.TempDir(), "--json", "--markdown")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}
