package chart

import (
	"fmt"
	"image/color"
	"io"

	svg "github.com/ajstarks/svgo"
)

// renderSVG writes l as an SVG document.
func renderSVG(w io.Writer, l Layout) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Rect(0, 0, l.Width, l.Height, "fill:"+css(colorBackground))

	left, top, right, bottom := px(l.Left), px(l.Top), px(l.Right), px(l.Bottom)
	grid := fmt.Sprintf("stroke:%s;stroke-width:1;stroke-dasharray:4,4", css(colorGrid))
	for _, t := range l.YTicks {
		canvas.Line(left, px(t.Pos), right, px(t.Pos), grid)
	}
	for _, t := range l.XTicks {
		canvas.Line(px(t.Pos), top, px(t.Pos), bottom, grid)
	}

	axis := fmt.Sprintf("stroke:%s;stroke-width:1.5", css(colorAxis))
	canvas.Line(left, bottom, right, bottom, axis)
	canvas.Line(left, top, left, bottom, axis)

	label := fmt.Sprintf("fill:%s;font-size:12px;font-family:sans-serif", css(colorText))
	for _, t := range l.YTicks {
		canvas.Text(left-8, px(t.Pos)+4, t.Label, label+";text-anchor:end")
	}
	for _, t := range l.XTicks {
		canvas.TranslateRotate(px(t.Pos), bottom+14, -30)
		canvas.Text(0, 4, t.Label, label+";text-anchor:end")
		canvas.Gend()
	}

	if len(l.Points) > 0 {
		xs := make([]int, len(l.Points))
		ys := make([]int, len(l.Points))
		for i, p := range l.Points {
			xs[i], ys[i] = px(p.X), px(p.Y)
		}
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", css(colorLine)))
		for i := range xs {
			canvas.Circle(xs[i], ys[i], 4, "fill:"+css(colorLine))
		}
	}

	title := fmt.Sprintf("fill:%s;font-size:16px;font-family:sans-serif;text-anchor:middle", css(colorText))
	canvas.Text(l.Width/2, px(l.Top/2)+5, l.Title, title)
	canvas.Text(px((l.Left+l.Right)/2), l.Height-16, l.XLabel, label+";text-anchor:middle")
	canvas.TranslateRotate(20, px((l.Top+l.Bottom)/2), -90)
	canvas.Text(0, 4, l.YLabel, label+";text-anchor:middle")
	canvas.Gend()

	canvas.End()
	return nil
}

func px(v float64) int {
	return int(v + 0.5)
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
