package filter

import "github.com/nao1215/fareplot/internal/dom"

// Selectors of the page elements the widget binds to.
const (
	SelectorRouteFilter  = "#route-filter"
	SelectorDateFilter   = "#date-filter"
	SelectorGrid         = "#chart-grid"
	SelectorCard         = ".chart-card"
	SelectorStatus       = "#chart-status"
	SelectorModal        = "#chart-modal"
	SelectorModalImage   = "[data-modal-image]"
	SelectorModalCaption = "[data-modal-caption]"
	SelectorModalClose   = "[data-modal-close]"
)

// Card attributes carrying the entry tags.
const (
	AttrRoute = "data-route"
	AttrDate  = "data-date"
)

// StatusNoCharts is shown when the page lacks the filter controls or grid.
const StatusNoCharts = "No charts available."

// Option labels of the All sentinel.
const (
	LabelAllRoutes = "All routes"
	LabelAllDates  = "All dates"
)

// Widget binds an Engine and a Modal to a document.
type Widget struct {
	doc    dom.Document
	engine *Engine
	modal  *Modal

	routeSelect dom.Element
	dateSelect  dom.Element
	grid        dom.Element
	status      dom.Element
	cards       []dom.Element

	off []func()
}

// Mount reads the chart cards from doc, renders the initial filter state
// and subscribes to user events. When a selector or the grid is missing the
// widget only writes StatusNoCharts and stays inert.
func Mount(doc dom.Document) *Widget {
	w := &Widget{
		doc:         doc,
		status:      doc.Query(SelectorStatus),
		routeSelect: doc.Query(SelectorRouteFilter),
		dateSelect:  doc.Query(SelectorDateFilter),
		grid:        doc.Query(SelectorGrid),
	}
	if w.routeSelect == nil || w.dateSelect == nil || w.grid == nil {
		if w.status != nil {
			w.status.SetText(StatusNoCharts)
		}
		return w
	}

	w.cards = w.grid.QueryAll(SelectorCard)
	entries := make([]ChartEntry, len(w.cards))
	for i, card := range w.cards {
		entries[i] = entryFromCard(card)
	}
	w.engine = NewEngine(entries)
	w.modal = newModal(doc)

	w.render()
	w.bind()
	return w
}

// Mounted reports whether the widget found its controls and is active.
func (w *Widget) Mounted() bool {
	return w.engine != nil
}

// Engine returns the filter engine, or nil when not mounted.
func (w *Widget) Engine() *Engine {
	return w.engine
}

// Modal returns the modal viewer, or nil when not mounted.
func (w *Widget) Modal() *Modal {
	return w.modal
}

// Apply changes the selection as if the user had picked route and date.
func (w *Widget) Apply(route, date string) State {
	if w.engine == nil {
		return State{Route: All, Date: All}
	}
	s := w.engine.OnSelectionChange(route, date)
	w.render()
	return s
}

// Unmount removes every listener the widget registered.
// The rendered state is left in place.
func (w *Widget) Unmount() {
	for _, off := range w.off {
		off()
	}
	w.off = nil
}

func (w *Widget) bind() {
	onChange := func(dom.Event) {
		w.Apply(w.routeSelect.Value(), w.dateSelect.Value())
	}
	w.off = append(w.off,
		w.doc.On(w.routeSelect, "change", onChange),
		w.doc.On(w.dateSelect, "change", onChange),
	)

	for i, card := range w.cards {
		entry := w.engine.Entry(i)
		w.off = append(w.off,
			w.doc.On(card, "click", func(dom.Event) { w.modal.Open(entry) }),
			w.doc.On(card, "keydown", func(ev dom.Event) {
				if !isActivationKey(ev.Key()) {
					return
				}
				ev.PreventDefault()
				w.modal.Open(entry)
			}),
		)
	}

	w.off = append(w.off, w.modal.bind(w.doc)...)
}

func (w *Widget) render() {
	s := w.engine.State()
	w.routeSelect.SetOptions(options(w.engine.RouteOptions(), LabelAllRoutes), s.Route)
	w.dateSelect.SetOptions(options(w.engine.DateOptions(), LabelAllDates), s.Date)

	for i, card := range w.cards {
		if w.engine.Visible(i) {
			card.SetStyle("display", "flex")
		} else {
			card.SetStyle("display", "none")
		}
	}
	if w.status != nil {
		w.status.SetText(w.engine.Status())
	}
}

func entryFromCard(card dom.Element) ChartEntry {
	route, _ := card.Attr(AttrRoute)
	date, _ := card.Attr(AttrDate)
	entry := ChartEntry{Route: route, Date: date}
	if img := card.Query("img"); img != nil {
		entry.Image.Src, _ = img.Attr("src")
		entry.Image.Alt, _ = img.Attr("alt")
	}
	return entry
}

func options(values []string, allLabel string) []dom.Option {
	out := make([]dom.Option, len(values))
	for i, v := range values {
		label := v
		if v == All {
			label = allLabel
		}
		out[i] = dom.Option{Value: v, Label: label}
	}
	return out
}

// isActivationKey reports Enter and Space. "Spacebar" is what older
// browsers report for the space key.
func isActivationKey(key string) bool {
	return key == "Enter" || key == " " || key == "Spacebar"
}
