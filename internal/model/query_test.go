package model

import (
	"strings"
	"testing"
)

// TestSearchQuerySearchURL tests search URL construction.
func TestSearchQuerySearchURL(t *testing.T) {
	t.Parallel()

	t.Run("contains the expected parameters", func(t *testing.T) {
		t.Parallel()

		q := SearchQuery{
			Origin:      "STN",
			Destination: "BGY",
			DepartDate:  "2026-08-22",
			ReturnDate:  "2026-09-04",
			Adults:      2,
			Currency:    "EUR",
		}
		url := q.SearchURL()

		if !strings.HasPrefix(url, "https://www.ryanair.com/gb/en/trip/flights/select?") {
			t.Errorf("unexpected prefix: %s", url)
		}
		for _, want := range []string{
			"originIata=STN",
			"destinationIata=BGY",
			"dateOut=2026-08-22",
			"dateIn=2026-09-04",
			"adults=2",
			"currency=EUR",
		} {
			if !strings.Contains(url, want) {
				t.Errorf("URL %s missing %q", url, want)
			}
		}
	})

	t.Run("keeps parameter order", func(t *testing.T) {
		t.Parallel()

		url := SearchQuery{Origin: "STN", Destination: "BGY"}.SearchURL()
		adults := strings.Index(url, "adults=")
		origin := strings.Index(url, "originIata=")
		currency := strings.Index(url, "currency=")

		if adults >= origin || origin >= currency {
			t.Errorf("parameters out of order: %s", url)
		}
	})

	t.Run("defaults to one adult and trims the base", func(t *testing.T) {
		t.Parallel()

		url := SearchQuery{}.SearchURLWithBase("http://127.0.0.1:8080/")
		if !strings.HasPrefix(url, "http://127.0.0.1:8080/trip/flights/select?adults=1&") {
			t.Errorf("unexpected URL: %s", url)
		}
	})
}

// TestSearchQueryIdentifiers tests RouteID and Label.
func TestSearchQueryIdentifiers(t *testing.T) {
	t.Parallel()

	q := SearchQuery{Origin: "STN", Destination: "BGY", DepartDate: "2026-08-22"}
	if got := q.RouteID(); got != "STN-BGY" {
		t.Errorf("RouteID() = %q", got)
	}
	if got := q.Label(); got != "STN-BGY-2026-08-22" {
		t.Errorf("Label() = %q", got)
	}
}
