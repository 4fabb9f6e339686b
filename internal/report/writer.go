package report

import (
	"io"
	"maps"
	"slices"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/fareplot/internal/model"
)

var printer = message.NewPrinter(language.English)

// PriceReport is the data every writer renders.
type PriceReport struct {
	// GeneratedAt is when the report was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// Series summarizes the latest, lowest and highest price per departure.
	Series []model.SeriesSummary `json:"series,omitempty"`

	// Changes compares the two latest prices per departure.
	Changes []model.PriceChange `json:"changes,omitempty"`

	// Statuses counts lookup outcomes of the latest scrape run.
	Statuses map[model.Status]int `json:"statuses,omitempty"`
}

// HasData reports whether the report has anything to show.
func (r *PriceReport) HasData() bool {
	return len(r.Series) > 0 || len(r.Changes) > 0
}

// CountDirection returns the number of changes moving in d.
func (r *PriceReport) CountDirection(d model.Direction) int {
	n := 0
	for _, c := range r.Changes {
		if c.Direction == d {
			n++
		}
	}
	return n
}

// sortedStatuses returns the statuses present in the report in a stable order.
func (r *PriceReport) sortedStatuses() []model.Status {
	return slices.Sorted(maps.Keys(r.Statuses))
}

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *PriceReport) (int, error)
}

// MultiWriter writes to multiple Writers, e.g. terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers and stops on the
// first error.
func (m *MultiWriter) Write(report *PriceReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// formatDelta formats a price change with its sign and percentage,
// e.g. "+5.00 (+25.0%)".
func formatDelta(c model.PriceChange) string {
	if c.Previous == nil {
		return "-"
	}
	sign := ""
	if c.Delta > 0 {
		sign = "+"
	}
	pct := c.Percent()
	pctSign := ""
	if pct > 0 {
		pctSign = "+"
	}
	return sign + model.FormatPrice(c.Delta, "") + " (" + pctSign + printer.Sprintf("%.1f", pct) + "%)"
}

// previousPrice formats the previous price of c or "-".
func previousPrice(c model.PriceChange) string {
	if c.Previous == nil {
		return "-"
	}
	return model.FormatPrice(c.Previous.Price, c.Currency)
}

const timeLayout = "2006-01-02 15:04 MST"
