package site

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/nao1215/fareplot/internal/chart"
	"github.com/nao1215/fareplot/internal/dom/htmldoc"
	"github.com/nao1215/fareplot/internal/filter"
	"github.com/nao1215/fareplot/internal/model"
)

// Output file names.
const (
	IndexFile    = "index.html"
	StyleFile    = "style.css"
	LoaderFile   = "loader.js"
	WasmFile     = "chartfilter.wasm"
	WasmExecFile = "wasm_exec.js"
)

// ErrNoSiteDir is returned when Options.Dir is empty.
var ErrNoSiteDir = errors.New("site directory is not set")

//go:embed templates/index.html.tmpl
var indexTemplate string

//go:embed assets
var assets embed.FS

var pageTemplate = template.Must(template.New("index").Parse(indexTemplate))

// Card is one chart shown on the page.
type Card struct {
	Summary model.SeriesSummary
	// Image is the chart path relative to the site directory, slash separated.
	Image string
	// Fingerprint is the content digest of the chart, see chart.Fingerprint.
	Fingerprint string
}

// Options configures Build.
type Options struct {
	// Dir is the site output directory.
	Dir string
	// Title is the page title.
	Title string
	// Intro is Markdown shown under the title.
	Intro string
	// Cards are the charts in display order.
	Cards []Card
	// GeneratedAt defaults to the current time.
	GeneratedAt time.Time
	// WasmModule is a GOOS=js GOARCH=wasm build of cmd/chartfilter.
	// When set it is copied into the site together with WasmExec and the
	// page loads it.
	WasmModule string
	// WasmExec is the wasm_exec.js shipped with the Go distribution.
	WasmExec string
}

// Result describes a built site.
type Result struct {
	Index  string
	Charts int
	Status string
	Script bool
}

type pageData struct {
	Title     string
	Intro     template.HTML
	Generated string
	Cards     []cardView
	Script    bool
}

type cardView struct {
	Route   string
	Date    string
	Title   string
	Image   string
	Summary string
}

// DefaultTitle is used when Options.Title is empty.
const DefaultTitle = "Flight price tracker"

// Build writes the site into opts.Dir.
func Build(opts Options) (*Result, error) {
	if opts.Dir == "" {
		return nil, ErrNoSiteDir
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}
	script := opts.WasmModule != "" && opts.WasmExec != ""

	if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create site directory: %w", err)
	}

	intro, err := RenderMarkdown(opts.Intro)
	if err != nil {
		return nil, err
	}
	data := pageData{
		Title:     opts.Title,
		Intro:     intro,
		Generated: opts.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"),
		Script:    script,
	}
	for _, c := range opts.Cards {
		data.Cards = append(data.Cards, newCardView(c))
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	page, status, err := prerender(&buf)
	if err != nil {
		return nil, err
	}

	index := filepath.Join(opts.Dir, IndexFile)
	if err := os.WriteFile(index, page, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write index: %w", err)
	}
	if err := copyAsset(opts.Dir, StyleFile); err != nil {
		return nil, err
	}
	if script {
		if err := copyAsset(opts.Dir, LoaderFile); err != nil {
			return nil, err
		}
		if err := copyFile(opts.WasmModule, filepath.Join(opts.Dir, WasmFile)); err != nil {
			return nil, err
		}
		if err := copyFile(opts.WasmExec, filepath.Join(opts.Dir, WasmExecFile)); err != nil {
			return nil, err
		}
	}
	if err := writeManifest(opts.Dir, newManifest(opts)); err != nil {
		return nil, err
	}

	return &Result{Index: index, Charts: len(opts.Cards), Status: status, Script: script}, nil
}

// Cards pairs rendered charts with their series summaries. Charts must live
// under siteDir; series without a chart are left out.
func Cards(siteDir string, series []model.Series, rendered []chart.Rendered) ([]Card, error) {
	byKey := make(map[model.SeriesKey]Card, len(rendered))
	for _, r := range rendered {
		rel, err := filepath.Rel(siteDir, r.Path)
		if err != nil {
			return nil, fmt.Errorf("chart %s is outside the site: %w", r.Path, err)
		}
		byKey[r.Key] = Card{Image: filepath.ToSlash(rel), Fingerprint: r.Fingerprint}
	}

	cards := make([]Card, 0, len(rendered))
	for _, s := range series {
		c, ok := byKey[s.Key]
		if !ok {
			continue
		}
		c.Summary = s.Summary()
		cards = append(cards, c)
	}
	return cards, nil
}

func newCardView(c Card) cardView {
	sum := c.Summary
	return cardView{
		Route: sum.Key.RouteID(),
		Date:  sum.Key.DepartureDate,
		Title: sum.Key.String(),
		Image: c.Image,
		Summary: fmt.Sprintf("latest %s · low %s · high %s · %d captures",
			model.FormatPrice(sum.Latest.Price, sum.Currency),
			model.FormatPrice(sum.Min, sum.Currency),
			model.FormatPrice(sum.Max, sum.Currency),
			sum.Count),
	}
}

// prerender mounts the filter widget over the generated page and returns the
// resulting markup and status line.
func prerender(r io.Reader) ([]byte, string, error) {
	doc, err := htmldoc.Parse(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse page: %w", err)
	}
	w := filter.Mount(doc)
	w.Unmount()

	status := ""
	if el := doc.Query(filter.SelectorStatus); el != nil {
		status = el.Text()
	}
	var out bytes.Buffer
	if err := doc.Render(&out); err != nil {
		return nil, "", fmt.Errorf("failed to render page: %w", err)
	}
	return out.Bytes(), status, nil
}

func copyAsset(dir, name string) error {
	data, err := assets.ReadFile(path.Join("assets", name))
	if err != nil {
		return fmt.Errorf("missing asset %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
