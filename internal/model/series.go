package model

import (
	"strings"
	"time"
	"unicode"
)

// SeriesKey identifies the price history of one departure.
type SeriesKey struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
}

// RouteID returns the route identifier, e.g. "STN-BGY".
func (k SeriesKey) RouteID() string {
	return RouteID(k.Origin, k.Destination)
}

// Slug returns the file name stem of the series chart,
// e.g. "STN_BGY_2026-08-22".
func (k SeriesKey) Slug() string {
	return Slugify(k.Origin) + "_" + Slugify(k.Destination) + "_" + Slugify(k.DepartureDate)
}

// String returns "STN → BGY (2026-08-22)", the chart title.
func (k SeriesKey) String() string {
	return k.Origin + " → " + k.Destination + " (" + k.DepartureDate + ")"
}

// Less orders keys by route, then date.
func (k SeriesKey) Less(o SeriesKey) bool {
	if k.Origin != o.Origin {
		return k.Origin < o.Origin
	}
	if k.Destination != o.Destination {
		return k.Destination < o.Destination
	}
	return k.DepartureDate < o.DepartureDate
}

// Slugify keeps letters, digits, '-' and '_' and replaces every other rune
// with '-'.
func Slugify(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, s)
}

// Point is one priced capture of a series.
type Point struct {
	CapturedAt time.Time `json:"captured_at"`
	Price      float64   `json:"price"`
}

// Series is the ordered price history of one departure.
type Series struct {
	Key      SeriesKey `json:"key"`
	Currency string    `json:"currency"`
	Points   []Point   `json:"points"`
}

// Latest returns the most recent point.
func (s Series) Latest() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Summary returns the latest, lowest and highest price of the series.
func (s Series) Summary() SeriesSummary {
	sum := SeriesSummary{Key: s.Key, Currency: s.Currency, Count: len(s.Points)}
	for i, p := range s.Points {
		if i == 0 || p.Price < sum.Min {
			sum.Min = p.Price
		}
		if i == 0 || p.Price > sum.Max {
			sum.Max = p.Price
		}
	}
	sum.Latest, _ = s.Latest()
	return sum
}

// SeriesSummary condenses a series for reports.
type SeriesSummary struct {
	Key      SeriesKey `json:"key"`
	Currency string    `json:"currency"`
	Latest   Point     `json:"latest"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	Count    int       `json:"count"`
}
