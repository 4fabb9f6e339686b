package site

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/nao1215/fareplot/internal/model"
)

// ManifestFile is the machine-readable chart index written next to index.html.
const ManifestFile = "charts.json"

// Manifest lists the charts of a site build.
type Manifest struct {
	Title       string          `json:"title"`
	GeneratedAt time.Time       `json:"generated_at"`
	Charts      []ManifestChart `json:"charts"`
}

// ManifestChart is one chart of the manifest.
type ManifestChart struct {
	Route   string              `json:"route"`
	Date    string              `json:"date"`
	Image       string              `json:"image"`
	Fingerprint string              `json:"fingerprint,omitempty"`
	Summary     model.SeriesSummary `json:"summary"`
}

func newManifest(opts Options) Manifest {
	m := Manifest{
		Title:       opts.Title,
		GeneratedAt: opts.GeneratedAt,
		Charts:      make([]ManifestChart, 0, len(opts.Cards)),
	}
	for _, c := range opts.Cards {
		m.Charts = append(m.Charts, ManifestChart{
			Route:       c.Summary.Key.RouteID(),
			Date:        c.Summary.Key.DepartureDate,
			Image:       c.Image,
			Fingerprint: c.Fingerprint,
			Summary:     c.Summary,
		})
	}
	return m
}

func writeManifest(dir string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the manifest of a built site.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Clean(filepath.Join(dir, ManifestFile)))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

// Fingerprints returns the chart fingerprints recorded by the last build of
// the site in dir, keyed by chart path. A site that was never built yields
// an empty map.
func Fingerprints(dir string) map[string]string {
	out := make(map[string]string)
	m, err := ReadManifest(dir)
	if err != nil {
		return out
	}
	for _, c := range m.Charts {
		if c.Fingerprint == "" {
			continue
		}
		out[filepath.Join(dir, filepath.FromSlash(c.Image))] = c.Fingerprint
	}
	return out
}
