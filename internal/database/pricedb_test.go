package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/fareplot/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *PriceDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func obsAt(day int, departure, price string) model.Observation {
	status := model.StatusOK
	if price == "" {
		status = model.StatusTimeout
	}
	return model.Observation{
		TimestampUTC:  time.Date(2026, 7, day, 6, 0, 0, 0, time.UTC),
		Origin:        "STN",
		Destination:   "BGY",
		DepartureDate: departure,
		ReturnDate:    "2026-09-04",
		Price:         price,
		Currency:      "GBP",
		Status:        status,
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Open() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		db.Close()
	})
}

// TestObservations tests inserting and querying observations.
func TestObservations(t *testing.T) {
	t.Parallel()

	t.Run("history, latest two and series list", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		for _, o := range []model.Observation{
			obsAt(1, "2026-08-22T06:30", "£30.00"),
			obsAt(2, "2026-08-22T06:30", ""),
			obsAt(3, "2026-08-22T12:10", "£1,045.50"),
			obsAt(4, "2026-08-22T06:30", "£25.00"),
		} {
			if err := db.InsertObservation(ctx, o); err != nil {
				t.Fatalf("InsertObservation() error = %v", err)
			}
		}

		keys, err := db.ListSeries(ctx)
		if err != nil {
			t.Fatalf("ListSeries() error = %v", err)
		}
		want := model.SeriesKey{Origin: "STN", Destination: "BGY", DepartureDate: "2026-08-22"}
		if len(keys) != 1 || keys[0] != want {
			t.Fatalf("ListSeries() = %v", keys)
		}

		history, err := db.History(ctx, want)
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if len(history.Points) != 3 || history.Points[1].Price != 1045.5 || history.Currency != "GBP" {
			t.Errorf("History() = %+v", history)
		}

		change, ok, err := db.LatestTwo(ctx, want)
		if err != nil || !ok {
			t.Fatalf("LatestTwo() = %v, %v", ok, err)
		}
		if change.Current.Price != 25 || change.Previous == nil || change.Previous.Price != 1045.5 {
			t.Errorf("LatestTwo() = %+v", change)
		}
		if change.Direction != model.DirectionDown {
			t.Errorf("Direction = %s", change.Direction)
		}
	})

	t.Run("single point is new", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		if err := db.InsertObservation(ctx, obsAt(1, "2026-08-22", "£30")); err != nil {
			t.Fatal(err)
		}

		changes, err := db.Changes(ctx)
		if err != nil {
			t.Fatalf("Changes() error = %v", err)
		}
		if len(changes) != 1 || changes[0].Direction != model.DirectionNew {
			t.Errorf("Changes() = %+v", changes)
		}
	})

	t.Run("unknown series", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		_, ok, err := db.LatestTwo(context.Background(), model.SeriesKey{Origin: "X"})
		if err != nil || ok {
			t.Errorf("LatestTwo() = %v, %v", ok, err)
		}
	})

	t.Run("import is idempotent", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		obs := []model.Observation{
			obsAt(1, "2026-08-22", "£30"),
			obsAt(2, "2026-08-22", "£31"),
			{Origin: "STN"},
		}

		added, err := db.Import(ctx, obs)
		if err != nil || added != 2 {
			t.Fatalf("Import() = %d, %v; want 2", added, err)
		}
		added, err = db.Import(ctx, obs)
		if err != nil || added != 0 {
			t.Errorf("second Import() = %d, %v; want 0", added, err)
		}
	})
}

// TestRuns tests run summaries.
func TestRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	run, err := db.LatestRun(ctx)
	if err != nil || run != nil {
		t.Fatalf("LatestRun() on empty db = %v, %v", run, err)
	}

	started := time.Date(2026, 7, 1, 6, 0, 0, 0, time.UTC)
	id, err := db.SaveRun(ctx, Run{
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		Total:      3,
		Statuses:   map[model.Status]int{model.StatusOK: 2, model.StatusTimeout: 1},
	})
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	run, err = db.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun() error = %v", err)
	}
	if run.ID != id || run.Total != 3 || !run.StartedAt.Equal(started) {
		t.Errorf("LatestRun() = %+v", run)
	}
	if run.Statuses[model.StatusOK] != 2 || run.Statuses[model.StatusTimeout] != 1 {
		t.Errorf("Statuses = %v", run.Statuses)
	}
}
