package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/text/currency"

	"github.com/nao1215/fareplot/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "fareplot"

	// DefaultTimeout bounds one search page load. The booking site renders
	// slowly, so this is generous.
	DefaultTimeout = 40 * time.Second

	// DefaultBatchSize is the number of routes looked up concurrently.
	// Higher values risk being rate limited by the booking site.
	DefaultBatchSize = 4

	// DefaultCurrency is used for routes that do not set one.
	DefaultCurrency = "GBP"

	// DefaultAdults is used for routes that do not set a passenger count.
	DefaultAdults = 1

	// DefaultCSVPath is the time series file.
	DefaultCSVPath = "data/flight_prices.csv"

	// DefaultSiteDir is the static site output directory.
	DefaultSiteDir = "site"

	// DefaultChartDir is the chart subdirectory of the site.
	DefaultChartDir = "charts"

	// DefaultLogFile receives a copy of the log output.
	DefaultLogFile = "logs/fareplot.log"

	// DefaultUserAgent is sent with search requests. The booking site serves
	// a reduced page to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// DefaultMaxBodySize limits the search page size read into memory.
	DefaultMaxBodySize = 8 * 1024 * 1024

	// DefaultServeAddress is where `fareplot serve` listens.
	DefaultServeAddress = "127.0.0.1:8080"

	// dateLayout is the layout of departure and return dates.
	dateLayout = "2006-01-02"
)

// Config holds all configuration options for fareplot. It is populated from
// CLI flags and the config file and passed down explicitly.
//
// Design decision: A single flat struct. The option count is manageable and
// nesting would add indirection without benefit.
type Config struct {
	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// Timeout bounds each search page load.
	Timeout time.Duration

	// BatchSize is the number of routes looked up concurrently.
	BatchSize int

	// Interval repeats the scrape on a schedule. Zero scrapes once.
	Interval time.Duration

	// Currency labels chart axes and is the default search currency.
	Currency string

	// CSVPath is the time series file.
	CSVPath string

	// SiteDir is the static site output directory.
	SiteDir string

	// ChartDir is where charts are rendered. Relative paths are resolved
	// against SiteDir.
	ChartDir string

	// ChartFormat is "png" or "svg".
	ChartFormat string

	// DebugDir receives the pages of failed lookups. Empty disables it.
	DebugDir string

	// LogFile receives a copy of the log output. Empty disables it.
	LogFile string

	// Verbose enables debug logging.
	Verbose bool

	// UserAgent is sent with search requests.
	UserAgent string

	// MaxBodySize limits the search page size read into memory.
	MaxBodySize int64

	// ConfigFilePath is the explicit config file; empty searches the
	// default locations.
	ConfigFilePath string

	// File is the loaded config file, if any.
	File *File

	// Routes are the searches to track.
	Routes []model.SearchQuery

	// JSONReport and MarkdownReport select the report format; they are
	// mutually exclusive.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// DBDir holds the SQLite history. Defaults to the XDG data directory.
	DBDir string

	// SaveToDB mirrors observations into the history database.
	SaveToDB bool

	// SiteTitle and SiteIntro configure the generated page.
	SiteTitle string
	SiteIntro string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		BatchSize:   DefaultBatchSize,
		Currency:    DefaultCurrency,
		CSVPath:     DefaultCSVPath,
		SiteDir:     DefaultSiteDir,
		ChartDir:    DefaultChartDir,
		ChartFormat: "png",
		LogFile:     DefaultLogFile,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
	}
}

// XDGDataDir returns the XDG data directory for fareplot.
// On Linux: ~/.local/share/fareplot
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for fareplot.
// On Linux: ~/.config/fareplot
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ChartPath returns the chart directory, resolved against SiteDir when
// relative.
func (c *Config) ChartPath() string {
	if filepath.IsAbs(c.ChartDir) {
		return c.ChartDir
	}
	return filepath.Join(c.SiteDir, c.ChartDir)
}

// Validate checks the configuration of a scrape run and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Routes) == 0 {
		return ErrNoRoute
	}
	for _, r := range c.Routes {
		if err := ValidateRoute(r); err != nil {
			return err
		}
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Interval < 0 {
		return ErrInvalidInterval
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return ValidateCurrency(c.Currency)
}

// ValidateReport checks the report output options.
func (c *Config) ValidateReport() error {
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// ValidateRoute checks that q names both airports and well-formed dates.
func ValidateRoute(q model.SearchQuery) error {
	if q.Origin == "" || q.Destination == "" {
		return fmt.Errorf("%w %s: origin and destination are required", ErrInvalidRoute, q.Label())
	}
	if _, err := time.Parse(dateLayout, q.DepartDate); err != nil {
		return fmt.Errorf("%w %s: depart date %q is not YYYY-MM-DD", ErrInvalidRoute, q.Label(), q.DepartDate)
	}
	if q.ReturnDate != "" {
		if _, err := time.Parse(dateLayout, q.ReturnDate); err != nil {
			return fmt.Errorf("%w %s: return date %q is not YYYY-MM-DD", ErrInvalidRoute, q.Label(), q.ReturnDate)
		}
	}
	if q.Adults < 0 {
		return fmt.Errorf("%w %s: adults must not be negative", ErrInvalidRoute, q.Label())
	}
	return ValidateCurrency(q.Currency)
}

// ValidateCurrency checks that code is empty or an ISO 4217 code.
func ValidateCurrency(code string) error {
	if code == "" {
		return nil
	}
	if _, err := currency.ParseISO(code); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return nil
}

// ApplyFile merges cf into c. Routes from the file are used only when no
// route was given on the command line; site settings fill empty fields.
func (c *Config) ApplyFile(cf *File) {
	if cf == nil {
		return
	}
	c.File = cf
	if len(c.Routes) == 0 {
		c.Routes = cf.Queries(c.Currency)
	}
	if c.SiteTitle == "" {
		c.SiteTitle = cf.Site.Title
	}
	if c.SiteIntro == "" {
		c.SiteIntro = cf.Site.Intro
	}
}

// RouteConfigFor returns the request settings of q: the matching config
// file route, or q alone when there is no file.
func (c *Config) RouteConfigFor(q model.SearchQuery) RouteConfig {
	if c.File == nil {
		return RouteConfig{SearchQuery: q}
	}
	return c.File.RouteConfigFor(q)
}
