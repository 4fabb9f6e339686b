// Package scraper fetches return-flight prices from the booking site.
//
// A Client builds the HTTP client (optional SOCKS5 proxy, cookie jar,
// injected headers). A Scraper loads the search page for a model.SearchQuery,
// locates the flight cards with goquery and reads the price and flight times
// of the first priced card.
//
// Design decision: Lookup failures are not errors. A page that times out,
// returns an error status or shows no price produces a Result with a
// non-ok model.Status, so the caller can record the miss in the history like
// any other observation. Only cancellation of the caller's context is
// returned as an error.
package scraper
