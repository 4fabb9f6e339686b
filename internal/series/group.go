package series

import (
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/nao1215/fareplot/internal/model"
)

// ParsePrice converts price text such as "£1,234.50" or "24.50 EUR" to a
// number. It reports false for empty or unparsable text.
func ParsePrice(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsDigit(r), r == '.', r == '-':
			return r
		case r == ',' || unicode.IsSpace(r):
			return -1
		case unicode.IsLetter(r) || unicode.Is(unicode.Sc, r):
			return -1
		default:
			return r
		}
	}, s)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Group splits observations into one series per departure. Rows without a
// timestamp or a parsable price are dropped, points are ordered by capture
// time, and series are ordered by key. The currency of a series is that of
// its latest point.
func Group(obs []model.Observation) []model.Series {
	byKey := make(map[model.SeriesKey]*model.Series)
	latest := make(map[model.SeriesKey]model.Observation)

	for _, o := range obs {
		if o.TimestampUTC.IsZero() {
			continue
		}
		price, ok := ParsePrice(o.Price)
		if !ok {
			continue
		}

		key := o.Key()
		s, exists := byKey[key]
		if !exists {
			s = &model.Series{Key: key}
			byKey[key] = s
		}
		s.Points = append(s.Points, model.Point{CapturedAt: o.TimestampUTC, Price: price})
		if prev, ok := latest[key]; !ok || !o.TimestampUTC.Before(prev.TimestampUTC) {
			latest[key] = o
		}
	}

	out := make([]model.Series, 0, len(byKey))
	for key, s := range byKey {
		slices.SortStableFunc(s.Points, func(a, b model.Point) int {
			return a.CapturedAt.Compare(b.CapturedAt)
		})
		s.Currency = latest[key].Currency
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b model.Series) int {
		switch {
		case a.Key.Less(b.Key):
			return -1
		case b.Key.Less(a.Key):
			return 1
		default:
			return 0
		}
	})
	return out
}
