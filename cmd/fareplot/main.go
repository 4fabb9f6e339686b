// Package main provides the entry point for the fareplot CLI.
//
// fareplot tracks return flight prices. It records the cheapest fare of each
// configured route in a CSV time series, draws one chart per route and
// departure date and publishes them as a static site with a filterable
// chart grid.
//
// Usage:
//
//	fareplot scrape
//	fareplot build
//	fareplot serve --watch
//
// See --help for all available options.
package main

func main() {
	Execute()
}
