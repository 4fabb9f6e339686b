// Package site builds the static chart site and serves it for preview.
//
// Build writes index.html, style.css, charts.json and, when a WebAssembly
// build of cmd/chartfilter is supplied, the loader scripts. The page follows
// the element contract of the filter package: two selects, a status line, a
// grid of chart cards tagged with data-route and data-date, and a modal
// viewer.
//
// Design decision: index.html is prerendered. Build mounts the filter widget
// over the generated markup with the htmldoc adapter before writing it, so
// the selects, the status line and card visibility are already correct
// before the wasm build mounts the same widget over the browser DOM.
//
// A site built without the wasm module cannot filter, so its filter form
// is hidden, the modal is left out and each card links to its chart.
package site
