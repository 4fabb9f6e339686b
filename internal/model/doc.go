// Package model defines the data structures shared by fareplot's packages.
//
// This package contains the following main types:
//   - SearchQuery: one return-flight search for a route and a pair of dates
//   - Observation: one scraped price point, a single row of the CSV history
//   - SeriesKey and Series: the price history of one departure
//   - PriceChange and SeriesSummary: derived views used by reports
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The scraper, the CSV store, the database, the chart renderer
// and the reports all exchange these types.
//
// The models carry JSON tags so they can be written by the JSON report and
// the site manifest without extra mapping types.
package model
