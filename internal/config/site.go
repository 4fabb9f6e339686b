package config

import (
	"maps"
	"strings"

	"github.com/nao1215/fareplot/internal/model"
)

// RouteConfig is one tracked search in the config file.
type RouteConfig struct {
	model.SearchQuery `yaml:",inline"`

	// Cookie is sent with this route's requests.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers for this route's requests.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// SiteSettings configures the generated page.
type SiteSettings struct {
	// Title is the page title.
	Title string `yaml:"title,omitempty"`

	// Intro is Markdown shown under the title.
	Intro string `yaml:"intro,omitempty"`
}

// File represents the structure of the .fareplot configuration file.
type File struct {
	// Defaults apply to every route unless the route overrides them.
	Defaults RouteConfig `yaml:"defaults,omitempty"`

	// Routes are the searches to track.
	Routes []RouteConfig `yaml:"routes,omitempty"`

	// Site configures the generated page.
	Site SiteSettings `yaml:"site,omitempty"`
}

// RouteConfigs returns every route merged with the defaults.
// Airport codes are upper-cased; adults and currency fall back to
// DefaultAdults and fallbackCurrency.
func (cf *File) RouteConfigs(fallbackCurrency string) []RouteConfig {
	out := make([]RouteConfig, 0, len(cf.Routes))
	for _, r := range cf.Routes {
		out = append(out, cf.merge(r, fallbackCurrency))
	}
	return out
}

// Queries returns the searches of every route merged with the defaults.
func (cf *File) Queries(fallbackCurrency string) []model.SearchQuery {
	routes := cf.RouteConfigs(fallbackCurrency)
	out := make([]model.SearchQuery, len(routes))
	for i, r := range routes {
		out[i] = r.SearchQuery
	}
	return out
}

// RouteConfigFor returns the request settings of the route matching q, or
// the defaults when no route matches.
func (cf *File) RouteConfigFor(q model.SearchQuery) RouteConfig {
	for _, r := range cf.Routes {
		if strings.EqualFold(r.Origin, q.Origin) &&
			strings.EqualFold(r.Destination, q.Destination) &&
			r.DepartDate == q.DepartDate &&
			r.ReturnDate == q.ReturnDate {
			return cf.merge(r, q.Currency)
		}
	}
	return cf.merge(RouteConfig{SearchQuery: q}, q.Currency)
}

func (cf *File) merge(r RouteConfig, fallbackCurrency string) RouteConfig {
	d := cf.Defaults
	out := r
	out.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))
	out.Destination = strings.ToUpper(strings.TrimSpace(r.Destination))

	if out.ReturnDate == "" {
		out.ReturnDate = d.ReturnDate
	}
	if out.Adults == 0 {
		out.Adults = d.Adults
	}
	if out.Adults == 0 {
		out.Adults = DefaultAdults
	}
	if out.Currency == "" {
		out.Currency = d.Currency
	}
	if out.Currency == "" {
		out.Currency = fallbackCurrency
	}
	out.Currency = strings.ToUpper(out.Currency)
	if out.Cookie == "" {
		out.Cookie = d.Cookie
	}

	headers := maps.Clone(d.Headers)
	if len(r.Headers) > 0 {
		if headers == nil {
			headers = make(map[string]string, len(r.Headers))
		}
		maps.Copy(headers, r.Headers)
	}
	out.Headers = headers
	return out
}
