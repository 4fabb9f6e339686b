// Package htmldoc implements dom.Document over an in-memory HTML tree.
//
// Parsing and rendering use golang.org/x/net/html; selector matching uses
// goquery. Events are dispatched synchronously and bubble from the target
// up to the document, mirroring what a browser does for click, change and
// keydown.
//
// The site generator mounts the chart filter on an htmldoc.Document to
// prerender selector options, visibility and the status line into the
// static page. Tests use the same type as the injected fake document.
package htmldoc

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/fareplot/internal/dom"
)

// Document is a mutable HTML document with event listeners.
// It is not safe for concurrent use, matching the single-threaded event
// model of the widget it hosts.
type Document struct {
	// root is the goquery view over the parsed tree.
	root *goquery.Document

	// listeners maps a node to the subscriptions registered on it.
	listeners map[*html.Node][]*listener

	// nextID identifies subscriptions for removal.
	nextID int
}

type listener struct {
	id      int
	event   string
	handler dom.Handler
}

var _ dom.Document = (*Document)(nil)

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{
		root:      doc,
		listeners: make(map[*html.Node][]*listener),
	}, nil
}

// ParseString is Parse for an in-memory string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Query returns the first element matching selector, or nil.
func (d *Document) Query(selector string) dom.Element {
	sel := d.root.Find(selector)
	if sel.Length() == 0 {
		return nil
	}
	return d.wrap(sel.Get(0))
}

// QueryAll returns every element matching selector in document order.
func (d *Document) QueryAll(selector string) []dom.Element {
	return d.wrapAll(d.root.Find(selector))
}

// On subscribes handler to events of type event on target.
// A nil target subscribes on the document node. Elements that do not belong
// to this document are ignored and a no-op remover is returned.
func (d *Document) On(target dom.Element, event string, handler dom.Handler) func() {
	node := d.node()
	if target != nil {
		el, ok := target.(*Element)
		if !ok || el.doc != d {
			return func() {}
		}
		node = el.node
	}

	d.nextID++
	l := &listener{id: d.nextID, event: event, handler: handler}
	d.listeners[node] = append(d.listeners[node], l)

	return func() { d.remove(node, l.id) }
}

// ListenerCount returns the number of live subscriptions.
func (d *Document) ListenerCount() int {
	n := 0
	for _, ls := range d.listeners {
		n += len(ls)
	}
	return n
}

// Dispatch fires an event at target and bubbles it to the document.
// A nil target dispatches on the document node only.
// The returned event reports whether a handler called PreventDefault.
func (d *Document) Dispatch(target dom.Element, eventType, key string) *Event {
	ev := &Event{eventType: eventType, key: key, target: target}

	start := d.node()
	if el, ok := target.(*Element); ok && el.doc == d {
		start = el.node
	}

	for n := start; n != nil; n = n.Parent {
		// Copy so handlers may unsubscribe while the event is delivered.
		subs := append([]*listener(nil), d.listeners[n]...)
		for _, l := range subs {
			if l.event != eventType || !d.subscribed(n, l.id) {
				continue
			}
			l.handler(ev)
		}
	}
	return ev
}

// Click dispatches a click event on target.
func (d *Document) Click(target dom.Element) *Event {
	return d.Dispatch(target, "click", "")
}

// KeyDown dispatches a keydown event for key on target.
func (d *Document) KeyDown(target dom.Element, key string) *Event {
	return d.Dispatch(target, "keydown", key)
}

// Change sets the value of a form control and dispatches a change event,
// which is what a browser does when the user picks an option.
func (d *Document) Change(target dom.Element, value string) *Event {
	target.SetValue(value)
	return d.Dispatch(target, "change", "")
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.node())
}

// HTML returns the document serialized as a string.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (d *Document) node() *html.Node {
	return d.root.Get(0)
}

func (d *Document) wrap(n *html.Node) *Element {
	return &Element{doc: d, node: n}
}

func (d *Document) wrapAll(sel *goquery.Selection) []dom.Element {
	out := make([]dom.Element, 0, sel.Length())
	for _, n := range sel.Nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

func (d *Document) remove(n *html.Node, id int) {
	subs := d.listeners[n]
	for i, l := range subs {
		if l.id == id {
			d.listeners[n] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(d.listeners[n]) == 0 {
		delete(d.listeners, n)
	}
}

func (d *Document) subscribed(n *html.Node, id int) bool {
	for _, l := range d.listeners[n] {
		if l.id == id {
			return true
		}
	}
	return false
}

// Event is the event type delivered by Document.
type Event struct {
	eventType string
	key       string
	target    dom.Element
	prevented bool
}

var _ dom.Event = (*Event)(nil)

// Type returns the event name.
func (e *Event) Type() string { return e.eventType }

// Key returns the key value for keyboard events.
func (e *Event) Key() string { return e.key }

// Target returns the element the event was dispatched to.
func (e *Event) Target() dom.Element { return e.target }

// PreventDefault marks the default action as suppressed.
func (e *Event) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether any handler called PreventDefault.
func (e *Event) DefaultPrevented() bool { return e.prevented }
