// Package filter implements the chart filter widget of the generated site.
//
// The widget keeps two dropdowns, route and date, consistent with each other
// and with a grid of chart cards, and shows a card's chart enlarged in a
// modal viewer.
//
// The package is split in three parts:
//
//   - Engine: pure selection logic. It derives the options offered by each
//     selector from the other selector's value, resets invalid selections to
//     the "all" sentinel and computes which entries are visible.
//   - Modal: the image viewer state bound to the modal container.
//   - Widget: the controller that reads the cards from a dom.Document,
//     renders engine results back into it and wires user events.
//
// Nothing here returns an error. Missing page elements degrade to a status
// message or an inert modal, and incoherent selections heal to "all".
//
// Design decision: Availability is computed in a single pass with the route
// taking priority. When a route and a date are requested that share no
// entry, the route is kept and the date falls back to "all". The widget
// does not iterate to a fixed point because one pass already satisfies the
// invariant that each selection is offered by its own selector.
package filter
