package chart

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/sha3"
	"golang.org/x/text/currency"

	"github.com/nao1215/fareplot/internal/model"
)

// Format is an output image format.
type Format string

const (
	// FormatPNG renders raster charts.
	FormatPNG Format = "png"
	// FormatSVG renders vector charts.
	FormatSVG Format = "svg"
)

var (
	// ErrUnknownFormat is returned for a format other than png or svg.
	ErrUnknownFormat = errors.New("unknown chart format")
	// ErrInvalidCurrency is returned when the axis currency is not an ISO 4217 code.
	ErrInvalidCurrency = errors.New("invalid currency code")
)

// ParseFormat parses "png" or "svg", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatSVG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Options configures Render.
type Options struct {
	// OutputDir receives one file per series.
	OutputDir string
	// Currency labels the y axis. When empty the currency of each series is used.
	Currency string
	// Format defaults to PNG.
	Format Format
	// Width and Height default to DefaultWidth and DefaultHeight.
	Width, Height int
	// Fingerprints maps chart paths to the fingerprint recorded when they
	// were last written. A chart whose new fingerprint matches and whose
	// file still exists is not rewritten or read back.
	Fingerprints map[string]string
}

// Rendered describes one chart file.
type Rendered struct {
	Key  model.SeriesKey
	Path string
	// Fingerprint is the hex SHA3-256 digest of the chart content.
	Fingerprint string
	// Unchanged is true when the file already had identical content.
	Unchanged bool
}

// Render writes one chart per non-empty series into opts.OutputDir.
// Series without points are skipped.
func Render(series []model.Series, opts Options) ([]Rendered, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutputDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}

	out := make([]Rendered, 0, len(series))
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		cur := opts.Currency
		if cur == "" {
			cur = s.Currency
		}

		var buf bytes.Buffer
		if err := Encode(&buf, s, cur, opts); err != nil {
			return out, fmt.Errorf("failed to render %s: %w", s.Key, err)
		}

		path := filepath.Join(opts.OutputDir, FileName(s.Key, opts.Format))
		fp := Fingerprint(buf.Bytes())
		unchanged, err := writeIfChanged(path, buf.Bytes(), fp, opts.Fingerprints[path])
		if err != nil {
			return out, err
		}
		out = append(out, Rendered{Key: s.Key, Path: path, Fingerprint: fp, Unchanged: unchanged})
	}
	return out, nil
}

// Encode renders s to w in opts.Format.
func Encode(w io.Writer, s model.Series, currency string, opts Options) error {
	l := NewLayout(s, currency, opts.Width, opts.Height)
	if opts.Format == FormatSVG {
		return renderSVG(w, l)
	}
	return renderPNG(w, l)
}

// FileName returns the chart file name of key, e.g. "STN_BGY_2026-08-22.png".
func FileName(key model.SeriesKey, f Format) string {
	if f == "" {
		f = FormatPNG
	}
	return key.Slug() + "." + string(f)
}

func (o Options) normalize() (Options, error) {
	if o.Format == "" {
		o.Format = FormatPNG
	}
	if _, err := ParseFormat(string(o.Format)); err != nil {
		return o, err
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Currency != "" {
		unit, err := currency.ParseISO(o.Currency)
		if err != nil {
			return o, fmt.Errorf("%w: %q", ErrInvalidCurrency, o.Currency)
		}
		o.Currency = unit.String()
	}
	return o, nil
}

// Fingerprint returns the hex SHA3-256 digest of chart content.
func Fingerprint(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeIfChanged writes data to path unless the file already holds the same
// content. A matching recorded fingerprint only needs the file to exist;
// without one the file is read back and compared.
func writeIfChanged(path string, data []byte, fp, recorded string) (bool, error) {
	if recorded != "" {
		if _, err := os.Stat(path); err == nil && recorded == fp {
			return true, nil
		}
	} else if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, data) {
		return true, nil
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false, fmt.Errorf("failed to write chart: %w", err)
	}
	return false, nil
}
