package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/fareplot/internal/model"
	"github.com/nao1215/fareplot/internal/series"
)

// FileName is the database file created inside the database directory.
const FileName = "fareplot.db"

// ErrNotFound is returned when a database file is required but missing.
var ErrNotFound = errors.New("database not found")

// PriceDB stores observations and run summaries.
type PriceDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures PriceDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the PriceDB in dbDir.
func Open(dbDir string, opts Options) (*PriceDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pdb := &PriceDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := pdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return pdb, nil
}

// Path returns the database file path.
func (pdb *PriceDB) Path() string {
	return pdb.dbPath
}

// Close closes the database connection.
func (pdb *PriceDB) Close() error {
	return pdb.db.Close()
}

func (pdb *PriceDB) createTables() error {
	schema := `
	-- One row per scraped observation. price is NULL when the lookup failed
	-- or the text could not be parsed.
	CREATE TABLE IF NOT EXISTS observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp_utc TEXT NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		departure_day TEXT NOT NULL,
		departure_date TEXT NOT NULL,
		arrival_date TEXT,
		return_date TEXT,
		price_text TEXT,
		price REAL,
		currency TEXT,
		status TEXT NOT NULL,
		notes TEXT,
		UNIQUE(timestamp_utc, origin, destination, departure_date, return_date)
	);

	CREATE INDEX IF NOT EXISTS idx_obs_series ON observations(origin, destination, departure_day, timestamp_utc);

	-- Scrape runs store per-status counts as JSON.
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		total INTEGER NOT NULL,
		status_summary TEXT
	);
	`
	_, err := pdb.db.ExecContext(context.Background(), schema)
	return err
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertObservation stores obs. Re-inserting the same observation is a no-op,
// so a CSV can be imported more than once.
func (pdb *PriceDB) InsertObservation(ctx context.Context, obs model.Observation) error {
	_, err := insertObservation(ctx, pdb.db, obs)
	return err
}

// Import inserts every observation with a timestamp in a single transaction
// and returns the number of new rows.
func (pdb *PriceDB) Import(ctx context.Context, obs []model.Observation) (int, error) {
	tx, err := pdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	added := 0
	for _, o := range obs {
		if o.TimestampUTC.IsZero() {
			continue
		}
		n, err := insertObservation(ctx, tx, o)
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return added, nil
}

func insertObservation(ctx context.Context, ex execer, obs model.Observation) (int64, error) {
	var price sql.NullFloat64
	if obs.Status == "" || obs.Status.OK() {
		if v, ok := series.ParsePrice(obs.Price); ok {
			price = sql.NullFloat64{Float64: v, Valid: true}
		}
	}

	query := `
	INSERT INTO observations (timestamp_utc, origin, destination, departure_day, departure_date,
		arrival_date, return_date, price_text, price, currency, status, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT DO NOTHING
	`
	result, err := ex.ExecContext(ctx, query,
		obs.TimestampUTC.UTC().Format(model.TimestampLayout),
		obs.Origin,
		obs.Destination,
		obs.DepartureDay(),
		obs.DepartureDate,
		obs.ArrivalDate,
		obs.ReturnDate,
		obs.Price,
		price,
		obs.Currency,
		obs.Status.String(),
		obs.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert observation: %w", err)
	}
	return result.RowsAffected()
}

// ListSeries returns every series with at least one priced observation,
// ordered by route and departure day.
func (pdb *PriceDB) ListSeries(ctx context.Context) ([]model.SeriesKey, error) {
	query := `
	SELECT DISTINCT origin, destination, departure_day FROM observations
	WHERE price IS NOT NULL
	ORDER BY origin, destination, departure_day
	`
	rows, err := pdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	defer rows.Close()

	var keys []model.SeriesKey
	for rows.Next() {
		var k model.SeriesKey
		if err := rows.Scan(&k.Origin, &k.Destination, &k.DepartureDate); err != nil {
			return nil, fmt.Errorf("failed to scan series: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// History returns the priced points of a series, oldest first.
func (pdb *PriceDB) History(ctx context.Context, key model.SeriesKey) (model.Series, error) {
	return pdb.points(ctx, key, `
	SELECT timestamp_utc, price, currency FROM observations
	WHERE origin = ? AND destination = ? AND departure_day = ? AND price IS NOT NULL
	ORDER BY timestamp_utc ASC, id ASC
	`)
}

// LatestTwo compares the two most recent prices of a series.
// It reports false when the series has no priced observation.
func (pdb *PriceDB) LatestTwo(ctx context.Context, key model.SeriesKey) (model.PriceChange, bool, error) {
	s, err := pdb.points(ctx, key, `
	SELECT timestamp_utc, price, currency FROM observations
	WHERE origin = ? AND destination = ? AND departure_day = ? AND price IS NOT NULL
	ORDER BY timestamp_utc DESC, id DESC
	LIMIT 2
	`)
	if err != nil {
		return model.PriceChange{}, false, err
	}

	switch len(s.Points) {
	case 0:
		return model.PriceChange{}, false, nil
	case 1:
		return model.NewPriceChange(key, s.Currency, s.Points[0], nil), true, nil
	default:
		previous := s.Points[1]
		return model.NewPriceChange(key, s.Currency, s.Points[0], &previous), true, nil
	}
}

// Changes returns the latest price change of every series.
func (pdb *PriceDB) Changes(ctx context.Context) ([]model.PriceChange, error) {
	keys, err := pdb.ListSeries(ctx)
	if err != nil {
		return nil, err
	}
	changes := make([]model.PriceChange, 0, len(keys))
	for _, k := range keys {
		c, ok, err := pdb.LatestTwo(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			changes = append(changes, c)
		}
	}
	return changes, nil
}

// points runs a query selecting (timestamp, price, currency) for key.
// The series currency is taken from the first row returned.
func (pdb *PriceDB) points(ctx context.Context, key model.SeriesKey, query string) (model.Series, error) {
	s := model.Series{Key: key}

	rows, err := pdb.db.QueryContext(ctx, query, key.Origin, key.Destination, key.DepartureDate)
	if err != nil {
		return s, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ts string
		var price float64
		var currency sql.NullString
		if err := rows.Scan(&ts, &price, &currency); err != nil {
			return s, fmt.Errorf("failed to scan history: %w", err)
		}
		if s.Currency == "" && currency.Valid {
			s.Currency = currency.String
		}
		s.Points = append(s.Points, model.Point{CapturedAt: parseTimestamp(ts), Price: price})
	}
	return s, rows.Err()
}

// Run summarizes one scrape run.
type Run struct {
	// ID is the database identifier.
	ID int64

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time

	// Total is the number of routes looked up.
	Total int

	// Statuses counts observations per status.
	Statuses map[model.Status]int
}

// SaveRun stores a run summary and returns its ID.
func (pdb *PriceDB) SaveRun(ctx context.Context, run Run) (int64, error) {
	summary, err := json.Marshal(run.Statuses)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize run summary: %w", err)
	}

	query := `
	INSERT INTO runs (started_at, finished_at, total, status_summary)
	VALUES (?, ?, ?, ?)
	`
	result, err := pdb.db.ExecContext(ctx, query,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Total,
		string(summary),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	return result.LastInsertId()
}

// LatestRun returns the most recent run, or nil when there is none.
func (pdb *PriceDB) LatestRun(ctx context.Context) (*Run, error) {
	query := `
	SELECT id, started_at, finished_at, total, status_summary FROM runs
	ORDER BY id DESC
	LIMIT 1
	`

	var run Run
	var started, finished string
	var summary sql.NullString
	err := pdb.db.QueryRowContext(ctx, query).Scan(&run.ID, &started, &finished, &run.Total, &summary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.StartedAt = parseTimestamp(started)
	run.FinishedAt = parseTimestamp(finished)
	run.Statuses = make(map[model.Status]int)
	if summary.Valid && summary.String != "" {
		if err := json.Unmarshal([]byte(summary.String), &run.Statuses); err != nil {
			return nil, fmt.Errorf("failed to parse run summary: %w", err)
		}
	}
	return &run, nil
}

// timestampFormats contains the timestamp formats stored by this package.
var timestampFormats = []string{
	model.TimestampLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
