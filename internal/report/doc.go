// Package report writes price summaries and price movement reports.
//
// This package contains writers for different output formats:
//   - SimpleWriter: aligned plain text for terminal display
//   - MarkdownWriter: Markdown with tables, alerts and a Mermaid status chart
//   - JSONWriter: structured JSON for tool integration
//
// Design decision: Report data lives in PriceReport and is assembled by the
// caller from the CSV series or the history database. Writers only format,
// so every command can reuse the same writers.
package report
