package chart

import (
	"math"
	"strconv"
	"time"

	"github.com/nao1215/fareplot/internal/model"
)

// Chart geometry in pixels.
const (
	DefaultWidth  = 1000
	DefaultHeight = 600

	marginLeft   = 90.0
	marginRight  = 40.0
	marginTop    = 60.0
	marginBottom = 90.0

	maxXTicks = 8
	yTicks    = 5
)

// dateLayout formats capture dates on the x axis.
const dateLayout = "2006-01-02"

// Tick is an axis tick at a pixel position.
type Tick struct {
	Pos   float64
	Label string
}

// XY is a point in pixel space.
type XY struct {
	X, Y float64
}

// Layout is the geometry of one chart, shared by the PNG and SVG renderers.
type Layout struct {
	Width, Height int

	// Plot area.
	Left, Top, Right, Bottom float64

	Title  string
	XLabel string
	YLabel string

	XTicks []Tick
	YTicks []Tick
	Points []XY
}

// NewLayout computes the layout of s. currency labels the y axis.
func NewLayout(s model.Series, currency string, width, height int) Layout {
	l := Layout{
		Width:  width,
		Height: height,
		Left:   marginLeft,
		Top:    marginTop,
		Right:  float64(width) - marginRight,
		Bottom: float64(height) - marginBottom,
		Title:  s.Key.String(),
		XLabel: "Capture date",
		YLabel: "Price (" + currency + ")",
	}
	if len(s.Points) == 0 {
		return l
	}

	first, last := s.Points[0].CapturedAt, s.Points[len(s.Points)-1].CapturedAt
	minPrice, maxPrice := s.Points[0].Price, s.Points[0].Price
	for _, p := range s.Points {
		minPrice = math.Min(minPrice, p.Price)
		maxPrice = math.Max(maxPrice, p.Price)
	}
	lo, hi, step := niceRange(minPrice, maxPrice, yTicks)

	xOf := func(t time.Time) float64 {
		span := last.Sub(first)
		if span <= 0 {
			return (l.Left + l.Right) / 2
		}
		return l.Left + float64(t.Sub(first))/float64(span)*(l.Right-l.Left)
	}
	yOf := func(v float64) float64 {
		return l.Bottom - (v-lo)/(hi-lo)*(l.Bottom-l.Top)
	}

	for _, p := range s.Points {
		l.Points = append(l.Points, XY{X: xOf(p.CapturedAt), Y: yOf(p.Price)})
	}
	for v := lo; v <= hi+step/2; v += step {
		l.YTicks = append(l.YTicks, Tick{Pos: yOf(v), Label: formatPrice(v, step)})
	}
	for _, d := range dateTicks(first, last, maxXTicks) {
		l.XTicks = append(l.XTicks, Tick{Pos: xOf(d), Label: d.Format(dateLayout)})
	}
	return l
}

// niceRange widens [lo, hi] to round tick boundaries.
func niceRange(lo, hi float64, ticks int) (float64, float64, float64) {
	if hi == lo {
		pad := math.Max(math.Abs(lo)*0.1, 1)
		lo, hi = lo-pad, hi+pad
	}
	step := niceStep((hi - lo) / float64(ticks))
	return math.Floor(lo/step) * step, math.Ceil(hi/step) * step, step
}

// niceStep rounds raw to 1, 2, 2.5 or 5 times a power of ten.
func niceStep(raw float64) float64 {
	exp := math.Pow(10, math.Floor(math.Log10(raw)))
	f := raw / exp
	switch {
	case f <= 1:
		return exp
	case f <= 2:
		return 2 * exp
	case f <= 2.5:
		return 2.5 * exp
	case f <= 5:
		return 5 * exp
	default:
		return 10 * exp
	}
}

func formatPrice(v, step float64) string {
	decimals := 0
	if step < 1 {
		decimals = 2
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// dateTicks returns at most n day boundaries between first and last.
// A single-day range yields that day.
func dateTicks(first, last time.Time, n int) []time.Time {
	start := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	if !start.Equal(first) && last.Sub(first) >= 24*time.Hour {
		start = start.AddDate(0, 0, 1)
	}
	days := int(last.Sub(start).Hours()/24) + 1
	if days <= 1 || last.Sub(first) < 24*time.Hour {
		return []time.Time{first}
	}
	every := (days + n - 1) / n
	var out []time.Time
	for d := start; !d.After(last); d = d.AddDate(0, 0, every) {
		out = append(out, d)
	}
	return out
}
