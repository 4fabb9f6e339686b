package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/fareplot/internal/model"
)

// SimpleWriter outputs human-readable text for terminal display.
//
// Design decision: Plain ASCII tables rather than ANSI colors, so the
// output can be piped to files or mail unchanged.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints section headers even without rows.
	showEmpty bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report.
func (w *SimpleWriter) Write(report *PriceReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSeries(&sb, report)
	w.writeChanges(&sb, report)
	w.writeStatuses(&sb, report)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *PriceReport) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("FLIGHT PRICE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Generated: %s\n\n", report.GeneratedAt.UTC().Format(timeLayout))

	if !report.HasData() {
		sb.WriteString("No price data recorded yet.\n")
	}
}

func (w *SimpleWriter) section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSeries(sb *strings.Builder, report *PriceReport) {
	if len(report.Series) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "LATEST PRICES")
	for _, s := range report.Series {
		fmt.Fprintf(sb, "  %-28s %14s  low %14s  high %14s  (%d)\n",
			s.Key.String(),
			model.FormatPrice(s.Latest.Price, s.Currency),
			model.FormatPrice(s.Min, s.Currency),
			model.FormatPrice(s.Max, s.Currency),
			s.Count,
		)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeChanges(sb *strings.Builder, report *PriceReport) {
	if len(report.Changes) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "PRICE CHANGES")
	for _, c := range report.Changes {
		fmt.Fprintf(sb, "  %s %-28s %14s -> %14s  %s\n",
			c.Direction.Symbol(),
			c.Key.String(),
			previousPrice(c),
			model.FormatPrice(c.Current.Price, c.Currency),
			formatDelta(c),
		)
	}
	fmt.Fprintf(sb, "\n  up: %d  down: %d  unchanged: %d  new: %d\n\n",
		report.CountDirection(model.DirectionUp),
		report.CountDirection(model.DirectionDown),
		report.CountDirection(model.DirectionUnchanged),
		report.CountDirection(model.DirectionNew),
	)
}

func (w *SimpleWriter) writeStatuses(sb *strings.Builder, report *PriceReport) {
	if len(report.Statuses) == 0 {
		return
	}
	w.section(sb, "LAST RUN")
	for _, st := range report.sortedStatuses() {
		fmt.Fprintf(sb, "  %-14s %d\n", st, report.Statuses[st])
	}
	sb.WriteString("\n")
}
