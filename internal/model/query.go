package model

import (
	"strconv"
	"strings"
)

// DefaultBaseURL is the booking site the search URL points at.
const DefaultBaseURL = "https://www.ryanair.com/gb/en"

// SearchQuery describes one return-flight search.
type SearchQuery struct {
	// Origin is the IATA code of the departure airport, e.g. "STN".
	Origin string `json:"origin" yaml:"origin"`

	// Destination is the IATA code of the arrival airport, e.g. "BGY".
	Destination string `json:"destination" yaml:"destination"`

	// DepartDate is the outbound date in YYYY-MM-DD form.
	DepartDate string `json:"depart_date" yaml:"departDate"`

	// ReturnDate is the inbound date in YYYY-MM-DD form.
	ReturnDate string `json:"return_date" yaml:"returnDate"`

	// Adults is the number of adult passengers. Zero means one.
	Adults int `json:"adults" yaml:"adults"`

	// Currency is the ISO 4217 code prices are requested in.
	Currency string `json:"currency" yaml:"currency"`
}

// RouteID returns the route identifier used on the site, e.g. "STN-BGY".
func (q SearchQuery) RouteID() string {
	return RouteID(q.Origin, q.Destination)
}

// Label returns a short identifier for logs and debug artifacts,
// e.g. "STN-BGY-2026-08-22".
func (q SearchQuery) Label() string {
	return q.RouteID() + "-" + q.DepartDate
}

// SearchURL returns the booking-site URL for the query.
func (q SearchQuery) SearchURL() string {
	return q.SearchURLWithBase(DefaultBaseURL)
}

// SearchURLWithBase returns the search URL rooted at base.
//
// Design decision: The query string is assembled by hand rather than with
// url.Values because the booking site expects its parameters in a fixed
// order and with a repeated isReturn flag, which url.Values would sort and
// collapse.
func (q SearchQuery) SearchURLWithBase(base string) string {
	adults := q.Adults
	if adults <= 0 {
		adults = 1
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	b.WriteString("/trip/flights/select?")
	b.WriteString("adults=" + strconv.Itoa(adults))
	b.WriteString("&teens=0&children=0&infants=0")
	b.WriteString("&originIata=" + q.Origin)
	b.WriteString("&destinationIata=" + q.Destination)
	b.WriteString("&dateOut=" + q.DepartDate)
	b.WriteString("&dateIn=" + q.ReturnDate)
	b.WriteString("&isReturn=true&flexdaysBeforeOut=0&flexdaysOut=0")
	b.WriteString("&flexdaysBeforeIn=0&flexdaysIn=0")
	b.WriteString("&roundTrip=true&discount=0")
	b.WriteString("&promoCode=&isConnectedFlight=false")
	b.WriteString("&isDomestic=false&isReturn=true")
	b.WriteString("&currency=" + q.Currency)
	return b.String()
}

// RouteID joins two airport codes into a route identifier.
func RouteID(origin, destination string) string {
	return origin + "-" + destination
}
