package filter

import (
	"fmt"
	"slices"
)

// All is the selector sentinel that applies no constraint on a dimension.
const All = "all"

// CaptionSeparator joins route and date in modal captions.
const CaptionSeparator = " · "

// Image is the displayable resource of a chart entry.
type Image struct {
	// Src is the image URL. An empty Src makes the entry unopenable.
	Src string
	// Alt is the accessible text.
	Alt string
}

// ChartEntry is one chart on the page, tagged with its route and date.
// Entries are immutable once the engine is initialized.
type ChartEntry struct {
	// Route identifies the origin/destination pair, e.g. "STN-BGY".
	// It may be empty when the card is untagged.
	Route string
	// Date is a lexically sortable departure date, e.g. "2026-08-22".
	// It may be empty when the card is untagged.
	Date string
	// Image is the chart image.
	Image Image
}

// Caption returns the modal caption. Empty parts are kept.
func (c ChartEntry) Caption() string {
	return c.Route + CaptionSeparator + c.Date
}

// State is the current selection of both filters.
type State struct {
	Route string
	Date  string
}

// Engine keeps the route and date filters consistent with each other and
// computes which entries are visible. It holds no DOM references.
type Engine struct {
	entries []ChartEntry

	// routes and dates are the distinct non-empty values, sorted.
	routes []string
	dates  []string

	state        State
	routeOptions []string
	dateOptions  []string
	visible      []bool
	visibleCount int
}

// NewEngine returns an engine initialized with entries.
func NewEngine(entries []ChartEntry) *Engine {
	e := &Engine{}
	e.Initialize(entries)
	return e
}

// Initialize replaces the entry collection and resets both filters to All.
func (e *Engine) Initialize(entries []ChartEntry) {
	e.entries = slices.Clone(entries)
	e.routes = distinct(e.entries, routeOf, nil)
	e.dates = distinct(e.entries, dateOf, nil)
	e.OnSelectionChange(All, All)
}

// OnSelectionChange applies a requested selection and returns the state
// that results after invalid values have been reset to All.
//
// Unknown values and the empty string are treated as All. When the pair
// matches no entry the route wins: the route is kept and the date is reset,
// so the user's most significant choice survives.
func (e *Engine) OnSelectionChange(route, date string) State {
	route = e.known(route, e.routes)
	date = e.known(date, e.dates)

	availableDates := e.datesFor(route)
	if date != All && !contains(availableDates, date) {
		date = All
	}
	availableRoutes := e.routesFor(date)

	e.state = State{Route: route, Date: date}
	e.routeOptions = withSentinel(availableRoutes)
	e.dateOptions = withSentinel(availableDates)
	e.updateVisibility()

	return e.state
}

// State returns the current selection.
func (e *Engine) State() State {
	return e.state
}

// RouteOptions returns the values offered by the route selector, headed by All.
func (e *Engine) RouteOptions() []string {
	return slices.Clone(e.routeOptions)
}

// DateOptions returns the values offered by the date selector, headed by All.
func (e *Engine) DateOptions() []string {
	return slices.Clone(e.dateOptions)
}

// Routes returns every distinct route, sorted.
func (e *Engine) Routes() []string {
	return slices.Clone(e.routes)
}

// Dates returns every distinct date, sorted.
func (e *Engine) Dates() []string {
	return slices.Clone(e.dates)
}

// Entry returns the i-th entry. The pointer stays valid until the next
// Initialize.
func (e *Engine) Entry(i int) *ChartEntry {
	return &e.entries[i]
}

// Total returns the number of entries.
func (e *Engine) Total() int {
	return len(e.entries)
}

// Visible reports whether the i-th entry matches the current selection.
func (e *Engine) Visible(i int) bool {
	return e.visible[i]
}

// VisibleCount returns the number of entries matching the current selection.
func (e *Engine) VisibleCount() int {
	return e.visibleCount
}

// Status returns the summary line shown under the grid.
func (e *Engine) Status() string {
	return fmt.Sprintf("%d of %d charts shown", e.visibleCount, len(e.entries))
}

// Matches reports whether entry passes the filters in s.
func Matches(entry ChartEntry, s State) bool {
	return (s.Route == All || entry.Route == s.Route) &&
		(s.Date == All || entry.Date == s.Date)
}

func (e *Engine) updateVisibility() {
	e.visible = make([]bool, len(e.entries))
	e.visibleCount = 0
	for i, entry := range e.entries {
		if Matches(entry, e.state) {
			e.visible[i] = true
			e.visibleCount++
		}
	}
}

// known maps "" and values absent from the collection to All.
func (e *Engine) known(value string, values []string) string {
	if value == "" || value == All || !contains(values, value) {
		return All
	}
	return value
}

func (e *Engine) datesFor(route string) []string {
	if route == All {
		return e.dates
	}
	return distinct(e.entries, dateOf, func(c ChartEntry) bool { return c.Route == route })
}

func (e *Engine) routesFor(date string) []string {
	if date == All {
		return e.routes
	}
	return distinct(e.entries, routeOf, func(c ChartEntry) bool { return c.Date == date })
}

func routeOf(c ChartEntry) string { return c.Route }
func dateOf(c ChartEntry) string  { return c.Date }

// distinct collects the sorted, non-empty values of field over the entries
// accepted by keep (all entries when keep is nil).
func distinct(entries []ChartEntry, field func(ChartEntry) string, keep func(ChartEntry) bool) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, entry := range entries {
		if keep != nil && !keep(entry) {
			continue
		}
		v := field(entry)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func contains(sorted []string, v string) bool {
	_, ok := slices.BinarySearch(sorted, v)
	return ok
}

func withSentinel(values []string) []string {
	out := make([]string, 0, len(values)+1)
	out = append(out, All)
	return append(out, values...)
}
