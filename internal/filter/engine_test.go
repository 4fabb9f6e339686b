package filter

import (
	"slices"
	"testing"
)

func scenarioEntries() []ChartEntry {
	return []ChartEntry{
		{Route: "STN-BGY", Date: "2026-08-22", Image: Image{Src: "charts/STN_BGY_2026-08-22.png"}},
		{Route: "STN-BGY", Date: "2026-09-01", Image: Image{Src: "charts/STN_BGY_2026-09-01.png"}},
		{Route: "LTN-FCO", Date: "2026-08-22", Image: Image{Src: "charts/LTN_FCO_2026-08-22.png"}},
	}
}

// TestEngineInitialize tests the initial state of the engine.
func TestEngineInitialize(t *testing.T) {
	t.Parallel()

	t.Run("offers every distinct value sorted", func(t *testing.T) {
		t.Parallel()

		e := NewEngine(scenarioEntries())

		if got, want := e.RouteOptions(), []string{All, "LTN-FCO", "STN-BGY"}; !slices.Equal(got, want) {
			t.Errorf("route options = %v, want %v", got, want)
		}
		if got, want := e.DateOptions(), []string{All, "2026-08-22", "2026-09-01"}; !slices.Equal(got, want) {
			t.Errorf("date options = %v, want %v", got, want)
		}
		if e.State() != (State{Route: All, Date: All}) {
			t.Errorf("state = %+v, want all/all", e.State())
		}
		if e.VisibleCount() != 3 {
			t.Errorf("visible = %d, want 3", e.VisibleCount())
		}
	})

	t.Run("empty collection", func(t *testing.T) {
		t.Parallel()

		e := NewEngine(nil)

		if got := e.RouteOptions(); !slices.Equal(got, []string{All}) {
			t.Errorf("route options = %v, want [all]", got)
		}
		if got := e.DateOptions(); !slices.Equal(got, []string{All}) {
			t.Errorf("date options = %v, want [all]", got)
		}
		if got := e.Status(); got != "0 of 0 charts shown" {
			t.Errorf("status = %q", got)
		}
	})

	t.Run("untagged entries are matched by all but not offered", func(t *testing.T) {
		t.Parallel()

		e := NewEngine([]ChartEntry{
			{Route: "STN-BGY", Date: ""},
			{Route: "", Date: "2026-08-22"},
		})

		if got := e.RouteOptions(); !slices.Equal(got, []string{All, "STN-BGY"}) {
			t.Errorf("route options = %v", got)
		}
		if got := e.DateOptions(); !slices.Equal(got, []string{All, "2026-08-22"}) {
			t.Errorf("date options = %v", got)
		}
		if e.VisibleCount() != 2 {
			t.Errorf("visible = %d, want 2", e.VisibleCount())
		}

		e.OnSelectionChange("STN-BGY", All)
		if got := e.DateOptions(); !slices.Equal(got, []string{All}) {
			t.Errorf("date options for untagged-date route = %v, want [all]", got)
		}
		if e.VisibleCount() != 1 {
			t.Errorf("visible = %d, want 1", e.VisibleCount())
		}
	})

	t.Run("does not keep a reference to the caller's slice", func(t *testing.T) {
		t.Parallel()

		entries := scenarioEntries()
		e := NewEngine(entries)
		entries[0].Route = "XXX-YYY"

		if e.Entry(0).Route != "STN-BGY" {
			t.Errorf("entry mutated through caller slice: %q", e.Entry(0).Route)
		}
	})
}

// TestEngineScenarios walks through the documented selection scenarios.
func TestEngineScenarios(t *testing.T) {
	t.Parallel()

	t.Run("route narrows the dates", func(t *testing.T) {
		t.Parallel()

		e := NewEngine(scenarioEntries())
		e.OnSelectionChange("STN-BGY", All)

		if got, want := e.DateOptions(), []string{All, "2026-08-22", "2026-09-01"}; !slices.Equal(got, want) {
			t.Errorf("date options = %v, want %v", got, want)
		}
		if e.VisibleCount() != 2 {
			t.Errorf("visible = %d, want 2", e.VisibleCount())
		}
	})

	t.Run("date narrows the routes", func(t *testing.T) {
		t.Parallel()

		e := NewEngine(scenarioEntries())
		e.OnSelectionChange("STN-BGY", All)
		s := e.OnSelectionChange("STN-BGY", "2026-09-01")

		if s != (State{Route: "STN-BGY", Date: "2026-09-01"}) {
			t.Errorf("state = %+v", s)
		}
		if got, want := e.RouteOptions(), []string{All, "STN-BGY"}; !slices.Equal(got, want) {
			t.Errorf("route options = %v, want %v", got, want)
		}
		if e.VisibleCount() != 1 {
			t.Errorf("visible = %d, want 1", e.VisibleCount())
		}
		if got := e.Status(); got != "1 of 3 charts shown" {
			t.Errorf("status = %q", got)
		}
	})

	// The route options are derived from the date after it was reset, not
	// from the requested date. Deriving them from "2026-09-01" would offer
	// only STN-BGY while LTN-FCO stays selected; using the reset date keeps
	// the kept route inside its own options.
	t.Run("route wins over an incompatible date", func(t *testing.T) {
		t.Parallel()

		e := NewEngine(scenarioEntries())
		e.OnSelectionChange("LTN-FCO", All)
		s := e.OnSelectionChange("LTN-FCO", "2026-09-01")

		if s != (State{Route: "LTN-FCO", Date: All}) {
			t.Errorf("state = %+v, want LTN-FCO/all", s)
		}
		if got, want := e.DateOptions(), []string{All, "2026-08-22"}; !slices.Equal(got, want) {
			t.Errorf("date options = %v, want %v", got, want)
		}
		if got, want := e.RouteOptions(), []string{All, "LTN-FCO", "STN-BGY"}; !slices.Equal(got, want) {
			t.Errorf("route options = %v, want %v", got, want)
		}
		if e.VisibleCount() != 1 {
			t.Errorf("visible = %d, want 1", e.VisibleCount())
		}
		if !e.Visible(2) || e.Visible(0) || e.Visible(1) {
			t.Error("expected only the LTN-FCO entry to be visible")
		}
	})

	t.Run("date alone narrows the routes", func(t *testing.T) {
		t.Parallel()

		e := NewEngine(scenarioEntries())
		e.OnSelectionChange(All, "2026-08-22")

		if got, want := e.RouteOptions(), []string{All, "LTN-FCO", "STN-BGY"}; !slices.Equal(got, want) {
			t.Errorf("route options = %v, want %v", got, want)
		}
		e.OnSelectionChange(All, "2026-09-01")
		if got, want := e.RouteOptions(), []string{All, "STN-BGY"}; !slices.Equal(got, want) {
			t.Errorf("route options = %v, want %v", got, want)
		}
	})
}

// TestEngineResets tests that invalid selections heal to All.
func TestEngineResets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		route string
		date  string
		want  State
	}{
		{name: "unknown route", route: "AAA-BBB", date: All, want: State{Route: All, Date: All}},
		{name: "unknown date", route: "STN-BGY", date: "1999-01-01", want: State{Route: "STN-BGY", Date: All}},
		{name: "empty values", route: "", date: "", want: State{Route: All, Date: All}},
		{name: "unknown route keeps valid date", route: "AAA-BBB", date: "2026-09-01", want: State{Route: All, Date: "2026-09-01"}},
		{name: "both unknown", route: "AAA-BBB", date: "1999-01-01", want: State{Route: All, Date: All}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEngine(scenarioEntries())
			if got := e.OnSelectionChange(tt.route, tt.date); got != tt.want {
				t.Errorf("OnSelectionChange(%q, %q) = %+v, want %+v", tt.route, tt.date, got, tt.want)
			}
		})
	}
}

// TestChartEntryCaption tests caption composition.
func TestChartEntryCaption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		entry ChartEntry
		want  string
	}{
		{ChartEntry{Route: "STN-BGY", Date: "2026-08-22"}, "STN-BGY · 2026-08-22"},
		{ChartEntry{Route: "STN-BGY"}, "STN-BGY · "},
		{ChartEntry{Date: "2026-08-22"}, " · 2026-08-22"},
	}
	for _, tt := range tests {
		if got := tt.entry.Caption(); got != tt.want {
			t.Errorf("Caption() = %q, want %q", got, tt.want)
		}
	}
}
