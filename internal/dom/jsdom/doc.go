// Package jsdom adapts the browser DOM to dom.Document through syscall/js.
//
// It is compiled only for GOOS=js GOARCH=wasm. cmd/chartfilter uses it to run
// the chart filter in the page generated by `fareplot build --wasm`.
package jsdom
