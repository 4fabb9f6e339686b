//go:build !(js && wasm)

// Command chartfilter runs the chart filter widget in the browser.
// It only does something useful when built for GOOS=js GOARCH=wasm.
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "chartfilter: build with GOOS=js GOARCH=wasm")
	os.Exit(1)
}
