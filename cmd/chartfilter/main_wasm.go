//go:build js && wasm

// Command chartfilter runs the chart filter widget in the browser.
//
// Build it with GOOS=js GOARCH=wasm and let `fareplot build --wasm` copy the
// result next to index.html. The page keeps working without it because the
// initial filter state is prerendered.
package main

import (
	"github.com/nao1215/fareplot/internal/dom/jsdom"
	"github.com/nao1215/fareplot/internal/filter"
)

func main() {
	filter.Mount(jsdom.New())
	select {}
}
