package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/fareplot/internal/model"
)

// MarkdownWriter outputs reports in Markdown, e.g. for a README or an
// issue comment posted by a scheduled job.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *PriceReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Flight Price Report")
	md.PlainText("")
	md.PlainTextf("Generated %s", report.GeneratedAt.UTC().Format(timeLayout))
	md.PlainText("")

	if !report.HasData() {
		md.Note("No price data recorded yet.")
		md.PlainText("")
	}
	w.writeSeries(md, report)
	w.writeChanges(md, report)
	w.writeStatuses(md, report)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeSeries(md *markdown.Markdown, report *PriceReport) {
	if len(report.Series) == 0 {
		return
	}
	md.H2("Latest Prices")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Series))
	for _, s := range report.Series {
		rows = append(rows, []string{
			s.Key.RouteID(),
			s.Key.DepartureDate,
			model.FormatPrice(s.Latest.Price, s.Currency),
			model.FormatPrice(s.Min, s.Currency),
			model.FormatPrice(s.Max, s.Currency),
			strconv.Itoa(s.Count),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Route", "Departure", "Latest", "Low", "High", "Captures"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeChanges(md *markdown.Markdown, report *PriceReport) {
	if len(report.Changes) == 0 {
		return
	}
	md.H2("Price Changes")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Changes))
	for _, c := range report.Changes {
		rows = append(rows, []string{
			c.Direction.Symbol(),
			c.Key.RouteID(),
			c.Key.DepartureDate,
			previousPrice(c),
			model.FormatPrice(c.Current.Price, c.Currency),
			formatDelta(c),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Trend", "Route", "Departure", "Previous", "Current", "Change"},
		Rows:   rows,
	})
	md.PlainText("")

	switch down := report.CountDirection(model.DirectionDown); {
	case down > 0:
		md.Tipf("%d fare(s) dropped since the previous capture.", down)
	case report.CountDirection(model.DirectionUp) > 0:
		md.Warningf("%d fare(s) went up since the previous capture.", report.CountDirection(model.DirectionUp))
	default:
		md.Note("No fare moved since the previous capture.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeStatuses(md *markdown.Markdown, report *PriceReport) {
	if len(report.Statuses) == 0 {
		return
	}
	md.H2("Last Run")
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Lookup outcomes"),
		piechart.WithShowData(true),
	)
	rows := make([][]string, 0, len(report.Statuses))
	for _, st := range report.sortedStatuses() {
		n := report.Statuses[st]
		rows = append(rows, []string{st.String(), strconv.Itoa(n)})
		if n > 0 {
			chart.LabelAndIntValue(st.String(), uint64(n))
		}
	}
	md.Table(markdown.TableSet{Header: []string{"Status", "Count"}, Rows: rows})
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	if failed := report.failedLookups(); failed > 0 {
		md.Cautionf("%d lookup(s) did not return a price.", failed)
		md.PlainText("")
	}
}

// failedLookups counts lookups of the last run without a price.
func (r *PriceReport) failedLookups() int {
	n := 0
	for st, count := range r.Statuses {
		if !st.OK() {
			n += count
		}
	}
	return n
}
