package model

import (
	"strings"
	"time"
)

// TimestampLayout is the format of capture timestamps in the CSV history.
// Timestamps are UTC without zone suffix and second precision.
const TimestampLayout = "2006-01-02T15:04:05"

// Status is the outcome of a single price lookup.
type Status string

const (
	// StatusOK means a price was found.
	StatusOK Status = "ok"

	// StatusTimeout means the search page did not load in time.
	StatusTimeout Status = "timeout"

	// StatusMissingPrice means the page loaded but no price could be found.
	StatusMissingPrice Status = "missing-price"

	// StatusFetchError means the request failed or returned an error status.
	StatusFetchError Status = "fetch-error"
)

// String returns the status as written to the CSV.
func (s Status) String() string {
	return string(s)
}

// OK reports whether the observation carries a price.
func (s Status) OK() bool {
	return s == StatusOK
}

// CSVHeader is the column order of the price history.
var CSVHeader = []string{
	"timestamp_utc",
	"origin",
	"destination",
	"departure_date",
	"arrival_date",
	"return_date",
	"price",
	"currency",
	"status",
	"notes",
}

// Observation is one recorded price lookup.
type Observation struct {
	// TimestampUTC is when the lookup ran, truncated to seconds.
	TimestampUTC time.Time `json:"timestamp_utc"`

	// Origin is the departure airport code.
	Origin string `json:"origin"`

	// Destination is the arrival airport code.
	Destination string `json:"destination"`

	// DepartureDate is the outbound departure, either a date ("2026-08-22")
	// or a date with the flight time ("2026-08-22T06:30").
	DepartureDate string `json:"departure_date"`

	// ArrivalDate is the outbound arrival in the same form, when known.
	ArrivalDate string `json:"arrival_date,omitempty"`

	// ReturnDate is the inbound date of the search.
	ReturnDate string `json:"return_date"`

	// Price is the price text as shown by the site, e.g. "£123.45".
	// Empty when the lookup failed.
	Price string `json:"price"`

	// Currency is the ISO 4217 code of the search.
	Currency string `json:"currency"`

	// Status is the lookup outcome.
	Status Status `json:"status"`

	// Notes carries diagnostics such as the HTTP status of a failed fetch.
	Notes string `json:"notes,omitempty"`
}

// NewObservation returns an observation for q captured at now.
func NewObservation(q SearchQuery, now time.Time) Observation {
	return Observation{
		TimestampUTC:  now.UTC().Truncate(time.Second),
		Origin:        q.Origin,
		Destination:   q.Destination,
		DepartureDate: q.DepartDate,
		ReturnDate:    q.ReturnDate,
		Currency:      q.Currency,
	}
}

// DepartureDay returns the date part of DepartureDate.
func (o Observation) DepartureDay() string {
	day, _, _ := strings.Cut(o.DepartureDate, "T")
	return day
}

// Key returns the series the observation belongs to.
func (o Observation) Key() SeriesKey {
	return SeriesKey{
		Origin:        o.Origin,
		Destination:   o.Destination,
		DepartureDate: o.DepartureDay(),
	}
}

// Record returns the observation as a CSV row in CSVHeader order.
func (o Observation) Record() []string {
	return []string{
		o.TimestampUTC.UTC().Format(TimestampLayout),
		o.Origin,
		o.Destination,
		o.DepartureDate,
		o.ArrivalDate,
		o.ReturnDate,
		o.Price,
		o.Currency,
		o.Status.String(),
		o.Notes,
	}
}

// FlightCard is the price and times read from one result card.
type FlightCard struct {
	// Price is the cleaned price text.
	Price string `json:"price"`

	// Times are the clock times shown on the card, departure first.
	Times []string `json:"times,omitempty"`
}
