//go:build js && wasm

package jsdom

import (
	"strings"
	"syscall/js"

	"github.com/nao1215/fareplot/internal/dom"
)

// Document wraps the global browser document.
type Document struct {
	v js.Value
}

var _ dom.Document = (*Document)(nil)

// New returns the global document.
func New() *Document {
	return &Document{v: js.Global().Get("document")}
}

// Query returns the first element matching selector, or nil.
func (d *Document) Query(selector string) dom.Element {
	return wrap(d.v.Call("querySelector", selector))
}

// QueryAll returns every element matching selector.
func (d *Document) QueryAll(selector string) []dom.Element {
	return wrapAll(d.v.Call("querySelectorAll", selector))
}

// On adds an event listener. The returned function removes it and releases
// the Go callback.
func (d *Document) On(target dom.Element, event string, handler dom.Handler) func() {
	node := d.v
	if target != nil {
		el, ok := target.(*Element)
		if !ok {
			return func() {}
		}
		node = el.v
	}

	fn := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) > 0 {
			handler(&Event{v: args[0]})
		}
		return nil
	})
	node.Call("addEventListener", event, fn)

	released := false
	return func() {
		if released {
			return
		}
		released = true
		node.Call("removeEventListener", event, fn)
		fn.Release()
	}
}

// Element wraps a browser element.
type Element struct {
	v js.Value
}

var _ dom.Element = (*Element)(nil)

func wrap(v js.Value) dom.Element {
	if v.IsNull() || v.IsUndefined() {
		return nil
	}
	return &Element{v: v}
}

func wrapAll(list js.Value) []dom.Element {
	n := list.Length()
	out := make([]dom.Element, 0, n)
	for i := range n {
		out = append(out, &Element{v: list.Index(i)})
	}
	return out
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	if !e.v.Call("hasAttribute", name).Bool() {
		return "", false
	}
	return e.v.Call("getAttribute", name).String(), true
}

// SetAttr sets an attribute.
func (e *Element) SetAttr(name, value string) { e.v.Call("setAttribute", name, value) }

// RemoveAttr removes an attribute.
func (e *Element) RemoveAttr(name string) { e.v.Call("removeAttribute", name) }

// Text returns textContent.
func (e *Element) Text() string { return e.v.Get("textContent").String() }

// SetText sets textContent.
func (e *Element) SetText(text string) { e.v.Set("textContent", text) }

// Style returns an inline style property.
func (e *Element) Style(property string) string {
	return e.v.Get("style").Call("getPropertyValue", strings.ToLower(property)).String()
}

// SetStyle sets an inline style property. An empty value removes it.
func (e *Element) SetStyle(property, value string) {
	style := e.v.Get("style")
	if value == "" {
		style.Call("removeProperty", property)
		return
	}
	style.Call("setProperty", property, value)
}

// Value returns the control value.
func (e *Element) Value() string { return e.v.Get("value").String() }

// SetValue sets the control value.
func (e *Element) SetValue(value string) { e.v.Set("value", value) }

// SetOptions replaces the options of a select element.
func (e *Element) SetOptions(options []dom.Option, selected string) {
	doc := js.Global().Get("document")
	e.v.Set("innerHTML", "")
	for _, o := range options {
		opt := doc.Call("createElement", "option")
		opt.Set("value", o.Value)
		opt.Set("textContent", o.Label)
		e.v.Call("appendChild", opt)
	}
	e.v.Set("value", selected)
}

// Query returns the first descendant matching selector, or nil.
func (e *Element) Query(selector string) dom.Element {
	return wrap(e.v.Call("querySelector", selector))
}

// QueryAll returns all descendants matching selector.
func (e *Element) QueryAll(selector string) []dom.Element {
	return wrapAll(e.v.Call("querySelectorAll", selector))
}

// Event wraps a browser event.
type Event struct {
	v js.Value
}

var _ dom.Event = (*Event)(nil)

// Type returns the event type.
func (e *Event) Type() string { return e.v.Get("type").String() }

// Key returns the key of keyboard events.
func (e *Event) Key() string {
	k := e.v.Get("key")
	if k.IsUndefined() {
		return ""
	}
	return k.String()
}

// Target returns the element the event was dispatched to.
func (e *Event) Target() dom.Element { return wrap(e.v.Get("target")) }

// PreventDefault suppresses the default action.
func (e *Event) PreventDefault() { e.v.Call("preventDefault") }
