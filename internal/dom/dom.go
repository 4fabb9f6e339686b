// Package dom defines the small document capability the chart filter needs.
//
// The filter widget never talks to a browser directly. It queries elements,
// reads and writes attributes, text and styles, and subscribes to events
// through the interfaces below. Two implementations exist:
//
//   - htmldoc: an in-memory document built on golang.org/x/net/html, used by
//     tests and by the site generator to prerender the initial state.
//   - jsdom: a syscall/js adapter compiled only for js/wasm, used in the
//     browser.
//
// Design decision: The interface is intentionally narrow. It covers exactly
// the operations the widget performs, so a fake document is a few dozen
// lines and the engine logic stays testable without a rendering environment.
package dom

// Option is a single entry of a select control.
type Option struct {
	// Value is submitted/compared when the option is chosen.
	Value string

	// Label is the human readable text of the option.
	Label string
}

// Element is a node of the document.
//
// Query returns nil when nothing matches; implementations must return an
// untyped nil so callers can compare against nil directly.
type Element interface {
	// Attr returns the attribute value and whether it is present.
	Attr(name string) (string, bool)
	// SetAttr sets (or adds) an attribute.
	SetAttr(name, value string)
	// RemoveAttr removes an attribute if present.
	RemoveAttr(name string)

	// Text returns the text content of the element and its descendants.
	Text() string
	// SetText replaces all children with a single text node.
	SetText(text string)

	// Style returns an inline style property, or "" when unset.
	Style(property string) string
	// SetStyle sets an inline style property.
	SetStyle(property, value string)

	// Value returns the current value of a form control.
	Value() string
	// SetValue changes the current value of a form control.
	SetValue(value string)
	// SetOptions replaces the options of a select control and marks the
	// option whose value equals selected as the active one.
	SetOptions(options []Option, selected string)

	// Query returns the first descendant matching the CSS selector.
	Query(selector string) Element
	// QueryAll returns all descendants matching the CSS selector.
	QueryAll(selector string) []Element
}

// Event is a dispatched user interaction.
type Event interface {
	// Type is the event name, e.g. "click", "change" or "keydown".
	Type() string
	// Key is the key value of keyboard events ("Enter", " ", "Escape").
	// It is empty for other events.
	Key() string
	// Target is the element the event was dispatched to.
	Target() Element
	// PreventDefault suppresses the default action of the event.
	PreventDefault()
}

// Handler reacts to an event.
type Handler func(Event)

// Document is the root the widget is mounted on.
type Document interface {
	// Query returns the first element matching the CSS selector, or nil.
	Query(selector string) Element
	// QueryAll returns all elements matching the CSS selector.
	QueryAll(selector string) []Element
	// On subscribes handler to events of the given type on target.
	// A nil target subscribes on the document itself, which receives
	// events bubbling from every element regardless of focus.
	// The returned function removes the subscription.
	On(target Element, event string, handler Handler) func()
}
