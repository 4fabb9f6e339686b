package scraper

import (
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/fareplot/internal/model"
)

// Selector lists are tried in order; the first one that yields text wins.
// The booking site has changed its markup several times, so older
// attribute and class names are kept as fallbacks.
var (
	cardSelectors = []string{
		"[data-ref='flight-card']",
		"flight-card",
		"[data-testid='flight-card']",
		"[data-e2e='flight-card']",
		".flight-card",
	}

	priceSelectors = []string{
		"[data-ref='price']",
		"[data-testid='price']",
		"[data-testid='price-value']",
		"[data-testid='flight-price']",
		"[data-e2e='flight-price']",
		".flight-card__price",
		".flight-price",
		".price",
	}

	timeSelectors = []string{
		"[data-ref='flight-time']",
		"[data-testid='flight-time']",
		".flight-card__time",
		".flight-time",
		".flight-info__hour",
	}

	// textAttributes are read when an element has no visible text, e.g.
	// prices rendered from an attribute by client-side code.
	textAttributes = []string{"aria-label", "content", "data-price", "title", "value"}
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)

	// pricePattern matches a symbol-prefixed amount ("£19.99") or an amount
	// followed by an ISO code ("24.50 EUR").
	pricePattern = regexp.MustCompile(
		`[£€$]\s?\d[\d,]*(?:\.\d{1,2})?|\d[\d,]*(?:\.\d{1,2})?\s?(?:GBP|EUR|USD|PLN|CHF|SEK|NOK|DKK|HUF|CZK)\b`,
	)

	timePattern = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
)

// ParseResult is what was found on a search results page.
type ParseResult struct {
	// Cards are the flight cards in page order.
	Cards []model.FlightCard

	// FallbackPrice is the first price-like text anywhere on the page.
	// It is used when no card carries a price.
	FallbackPrice string
}

// FirstPriced returns the first card with a price.
func (r ParseResult) FirstPriced() (model.FlightCard, bool) {
	for _, c := range r.Cards {
		if c.Price != "" {
			return c, true
		}
	}
	return model.FlightCard{}, false
}

// ParsePage extracts the flight cards from an HTML results page.
func ParsePage(r io.Reader) (*ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	for _, sel := range cardSelectors {
		cards := doc.Find(sel)
		if cards.Length() == 0 {
			continue
		}
		cards.Each(func(_ int, card *goquery.Selection) {
			result.Cards = append(result.Cards, model.FlightCard{
				Price: ExtractPriceFromText(extractText(card, priceSelectors)),
				Times: extractTimes(card, timeSelectors),
			})
		})
		break
	}

	if _, ok := result.FirstPriced(); !ok {
		// Cards may be missing entirely, so fall back to page-level price
		// selectors before scanning the whole body text.
		if text := extractText(doc.Selection, priceSelectors); text != "" {
			result.FallbackPrice = ExtractPriceFromText(text)
		}
		if result.FallbackPrice == "" {
			result.FallbackPrice = ExtractPriceFromText(CleanText(doc.Find("body").Text()))
		}
	}
	return result, nil
}

// extractText returns the text of the first element matching one of the
// selectors that is not empty.
func extractText(scope *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		var found string
		scope.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = elementText(s)
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// elementText prefers visible text and falls back to text-bearing attributes.
func elementText(s *goquery.Selection) string {
	if text := CleanText(s.Text()); text != "" {
		return text
	}
	for _, attr := range textAttributes {
		if v, ok := s.Attr(attr); ok {
			if text := CleanText(v); text != "" {
				return text
			}
		}
	}
	return ""
}

// extractTimes collects the clock times of the first selector that has any.
func extractTimes(scope *goquery.Selection, selectors []string) []string {
	for _, sel := range selectors {
		var times []string
		scope.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if m := timePattern.FindStringSubmatch(elementText(s)); m != nil {
				times = append(times, normalizeClock(m[1], m[2]))
			}
		})
		if len(times) > 0 {
			return times
		}
	}
	return nil
}

func normalizeClock(hour, minute string) string {
	if len(hour) == 1 {
		hour = "0" + hour
	}
	return hour + ":" + minute
}

// CleanText collapses runs of whitespace into single spaces and trims the ends.
func CleanText(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// ExtractPriceFromText returns the first price in text, or "" when there is
// none. "Fly now for £19.99!" yields "£19.99" and "Total price 24.50 EUR"
// yields "24.50 EUR".
func ExtractPriceFromText(text string) string {
	return pricePattern.FindString(text)
}
