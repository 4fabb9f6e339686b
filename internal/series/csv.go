package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/fareplot/internal/model"
)

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = errors.New("missing CSV column")

// legacyColumns maps old column names to current ones.
var legacyColumns = map[string]string{
	"depart_date": "departure_date",
}

// requiredColumns must be present to read a history file.
var requiredColumns = []string{"timestamp_utc", "origin", "destination", "departure_date", "price"}

// appendMu serializes appends within the process. Concurrent routes in a
// batch write to the same file.
var appendMu sync.Mutex

// Append writes obs to the CSV at path, creating the file and its parent
// directories as needed. The header is written only when the file is new
// or empty.
func Append(path string, obs ...model.Observation) error {
	appendMu.Lock()
	defer appendMu.Unlock()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // path is user configuration
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(model.CSVHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, o := range obs {
		if err := w.Write(o.Record()); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// ReadFile reads every observation from the CSV at path.
// A missing file yields no observations and no error.
func ReadFile(path string) ([]model.Observation, error) {
	f, err := os.Open(path) //nolint:gosec // path is user configuration
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	obs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return obs, nil
}

// Read parses observations by header name. Columns may appear in any order;
// unknown columns are ignored. Timestamps that do not parse are left zero
// so Group can drop those rows.
func Read(r io.Reader) ([]model.Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if current, ok := legacyColumns[name]; ok {
			if _, exists := index[current]; exists {
				continue
			}
			name = current
		}
		index[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []model.Observation
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		ts, _ := ParseTimestamp(field(rec, "timestamp_utc")) //nolint:errcheck // zero time marks an unusable row
		out = append(out, model.Observation{
			TimestampUTC:  ts,
			Origin:        field(rec, "origin"),
			Destination:   field(rec, "destination"),
			DepartureDate: field(rec, "departure_date"),
			ArrivalDate:   field(rec, "arrival_date"),
			ReturnDate:    field(rec, "return_date"),
			Price:         field(rec, "price"),
			Currency:      field(rec, "currency"),
			Status:        model.Status(field(rec, "status")),
			Notes:         field(rec, "notes"),
		})
	}
	return out, nil
}

// timestampLayouts are accepted when reading; the first is what Append writes.
var timestampLayouts = []string{
	model.TimestampLayout,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a capture timestamp as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
