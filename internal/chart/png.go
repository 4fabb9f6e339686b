package chart

import (
	"image/color"
	"io"
	"math"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"
)

var (
	colorBackground = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorAxis       = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	colorGrid       = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	colorLine       = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorText       = color.RGBA{R: 30, G: 30, B: 30, A: 255}
)

// renderPNG draws l and encodes it as PNG.
func renderPNG(w io.Writer, l Layout) error {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(colorBackground)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	// grid
	dc.SetColor(colorGrid)
	dc.SetLineWidth(1)
	dc.SetDash(4, 4)
	for _, t := range l.YTicks {
		dc.DrawLine(l.Left, t.Pos, l.Right, t.Pos)
		dc.Stroke()
	}
	for _, t := range l.XTicks {
		dc.DrawLine(t.Pos, l.Top, t.Pos, l.Bottom)
		dc.Stroke()
	}
	dc.SetDash()

	// axes
	dc.SetColor(colorAxis)
	dc.SetLineWidth(1.5)
	dc.DrawLine(l.Left, l.Bottom, l.Right, l.Bottom)
	dc.Stroke()
	dc.DrawLine(l.Left, l.Top, l.Left, l.Bottom)
	dc.Stroke()

	// tick labels
	dc.SetColor(colorText)
	for _, t := range l.YTicks {
		dc.DrawStringAnchored(t.Label, l.Left-8, t.Pos, 1, 0.5)
	}
	for _, t := range l.XTicks {
		// Slanted labels keep dense date axes readable.
		dc.Push()
		dc.RotateAbout(gg.Radians(-30), t.Pos, l.Bottom+14)
		dc.DrawStringAnchored(t.Label, t.Pos, l.Bottom+14, 1, 0.5)
		dc.Pop()
	}

	// series
	dc.SetColor(colorLine)
	dc.SetLineWidth(2)
	for i, p := range l.Points {
		if i == 0 {
			dc.MoveTo(p.X, p.Y)
			continue
		}
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
	for _, p := range l.Points {
		dc.DrawCircle(p.X, p.Y, 4)
		dc.Fill()
	}

	// titles
	dc.SetColor(colorText)
	dc.DrawStringAnchored(asciiText(l.Title), float64(l.Width)/2, l.Top/2, 0.5, 0.5)
	dc.DrawStringAnchored(l.XLabel, (l.Left+l.Right)/2, float64(l.Height)-16, 0.5, 0.5)
	dc.Push()
	dc.RotateAbout(-math.Pi/2, 20, (l.Top+l.Bottom)/2)
	dc.DrawStringAnchored(asciiText(l.YLabel), 20, (l.Top+l.Bottom)/2, 0.5, 0.5)
	dc.Pop()

	return dc.EncodePNG(w)
}

// asciiText replaces glyphs the bitmap font cannot draw.
func asciiText(s string) string {
	return strings.ReplaceAll(s, "→", "->")
}
