package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/fareplot/internal/config"
	"github.com/nao1215/fareplot/internal/database"
	"github.com/nao1215/fareplot/internal/model"
	"github.com/nao1215/fareplot/internal/pipeline"
	"github.com/nao1215/fareplot/internal/scraper"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Look up the current return price of every tracked route",
		Long: `Scrape loads the booking site search page of every tracked route and
records the cheapest return fare.

Each lookup appends one row to the CSV time series, including failed
lookups, which are recorded with a timeout, missing-price or fetch-error
status. The rows are mirrored into the SQLite history used by 'compare' and
'report' unless --no-db is given.

Routes come from the configuration file (.fareplot), or from the route
flags when --origin and --destination are given.

Examples:
  # Scrape the routes of the configuration file
  fareplot scrape

  # Scrape a single route
  fareplot scrape --origin STN --destination BGY \
    --depart-date 2026-08-22 --return-date 2026-08-29

  # Scrape every six hours until interrupted
  fareplot scrape --interval 6h

  # Route requests through a SOCKS5 proxy
  fareplot scrape --proxy 127.0.0.1:1080`,
		Args: cobra.NoArgs,
		RunE: runScrapeCmd,
	}

	// Route flags
	cmd.Flags().String("origin", "", "Departure airport IATA code (e.g. STN)")
	cmd.Flags().String("destination", "", "Arrival airport IATA code (e.g. BGY)")
	cmd.Flags().String("depart-date", "", "Outbound date (YYYY-MM-DD)")
	cmd.Flags().String("return-date", "", "Inbound date (YYYY-MM-DD)")
	cmd.Flags().Int("adults", config.DefaultAdults, "Number of adult passengers")
	cmd.Flags().String("currency", config.DefaultCurrency, "ISO 4217 currency prices are requested in")

	// Scrape behavior flags
	cmd.Flags().String("csv", config.DefaultCSVPath, "CSV time series file")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each search page")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of concurrent lookups")
	cmd.Flags().String("proxy", "", "SOCKS5 proxy address (e.g. 127.0.0.1:1080)")
	cmd.Flags().String("debug-dir", "", "Save the page of every failed lookup in this directory")
	cmd.Flags().Duration("interval", 0, "Repeat the scrape at this interval until interrupted")
	cmd.Flags().String("user-agent", config.DefaultUserAgent, "User-Agent sent with search requests")

	// Storage flags
	cmd.Flags().Bool("no-db", false, "Do not mirror observations into the SQLite history")
	cmd.Flags().String("db-dir", "", "SQLite history directory (default: XDG data directory)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .fareplot in current or home directory)")

	// The booking site root, overridden in tests.
	cmd.Flags().String("base-url", model.DefaultBaseURL, "Booking site root URL")
	_ = cmd.Flags().MarkHidden("base-url") //nolint:errcheck // flag is defined above

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildScrapeConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	baseURL, err := cmd.Flags().GetString("base-url")
	if err != nil {
		return err
	}

	logger, closer, err := setupLogger(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	return runScrape(commandContext(cmd), cfg, baseURL, logger, cmd.OutOrStdout())
}

// buildScrapeConfig creates a Config from cobra command flags and the
// configuration file.
func buildScrapeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.CSVPath, err = flags.GetString("csv"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.DebugDir, err = flags.GetString("debug-dir"); err != nil {
		return nil, err
	}
	if cfg.Interval, err = flags.GetDuration("interval"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.Currency, err = flags.GetString("currency"); err != nil {
		return nil, err
	}
	cfg.Currency = strings.ToUpper(cfg.Currency)

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	route, err := routeFromFlags(cmd, cfg.Currency)
	if err != nil {
		return nil, err
	}
	if route != nil {
		cfg.Routes = []model.SearchQuery{*route}
	}

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if err := loadConfigFile(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// routeFromFlags returns the route given by the route flags, or nil when
// neither --origin nor --destination is set.
func routeFromFlags(cmd *cobra.Command, currency string) (*model.SearchQuery, error) {
	flags := cmd.Flags()
	q := model.SearchQuery{Currency: currency}

	var err error
	if q.Origin, err = flags.GetString("origin"); err != nil {
		return nil, err
	}
	if q.Destination, err = flags.GetString("destination"); err != nil {
		return nil, err
	}
	if q.Origin == "" && q.Destination == "" {
		return nil, nil
	}
	if q.DepartDate, err = flags.GetString("depart-date"); err != nil {
		return nil, err
	}
	if q.ReturnDate, err = flags.GetString("return-date"); err != nil {
		return nil, err
	}
	if q.Adults, err = flags.GetInt("adults"); err != nil {
		return nil, err
	}
	q.Origin = strings.ToUpper(strings.TrimSpace(q.Origin))
	q.Destination = strings.ToUpper(strings.TrimSpace(q.Destination))
	return &q, nil
}

// loadConfigFile applies the configuration file to cfg. A missing file is
// only an error when the user named it explicitly.
func loadConfigFile(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if explicit {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil
	}

	cf, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	cfg.ApplyFile(cf)
	return nil
}

// runScrape scrapes every route once, or repeatedly when cfg.Interval is
// set. Cancellation ends an interval loop without an error.
func runScrape(ctx context.Context, cfg *config.Config, baseURL string, logger *slog.Logger, out io.Writer) error {
	var db *database.PriceDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	scrapers, err := newScrapers(cfg, baseURL, logger)
	if err != nil {
		return err
	}

	if _, err := scrapeOnce(ctx, cfg, scrapers, db, logger, out); err != nil {
		return err
	}
	if cfg.Interval == 0 {
		return nil
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		logger.Info("waiting for next scrape", "interval", cfg.Interval)
		select {
		case <-ctx.Done():
			logger.Info("scrape loop stopped")
			return nil
		case <-ticker.C:
		}
		if _, err := scrapeOnce(ctx, cfg, scrapers, db, logger, out); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// newScrapers creates one scraper per route so that each route sends its own
// cookie and headers.
func newScrapers(cfg *config.Config, baseURL string, logger *slog.Logger) (map[model.SearchQuery]pipeline.Fetcher, error) {
	out := make(map[model.SearchQuery]pipeline.Fetcher, len(cfg.Routes))
	for _, q := range cfg.Routes {
		rc := cfg.RouteConfigFor(q)

		clientOpts := []scraper.ClientOption{scraper.WithTimeout(cfg.Timeout)}
		if rc.Cookie != "" {
			clientOpts = append(clientOpts, scraper.WithCookie(rc.Cookie))
		}
		if len(rc.Headers) > 0 {
			clientOpts = append(clientOpts, scraper.WithHeaders(rc.Headers))
		}
		client, err := scraper.NewClient(cfg.ProxyAddress, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client for %s: %w", q.Label(), err)
		}

		scraperOpts := []scraper.Option{
			scraper.WithBaseURL(baseURL),
			scraper.WithUserAgent(cfg.UserAgent),
			scraper.WithPageTimeout(cfg.Timeout),
			scraper.WithMaxBodySize(cfg.MaxBodySize),
			scraper.WithLogger(logger),
		}
		if cfg.DebugDir != "" {
			scraperOpts = append(scraperOpts, scraper.WithDebugDir(cfg.DebugDir))
		}
		out[q] = scraper.New(client.HTTPClient(), scraperOpts...)
	}
	return out, nil
}

// newRoutePipeline creates the pipeline of one route.
func newRoutePipeline(fetcher pipeline.Fetcher, csvPath string, db *database.PriceDB, logger *slog.Logger) *pipeline.Pipeline {
	steps := []pipeline.Step{
		pipeline.NewScrapeStep(fetcher, logger),
		pipeline.NewRecordCSVStep(csvPath),
	}
	if db != nil {
		steps = append(steps, pipeline.NewRecordDBStep(db))
	}
	return pipeline.New(steps,
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
}

// scrapeOnce looks up every route and stores a run summary.
func scrapeOnce(ctx context.Context, cfg *config.Config, scrapers map[model.SearchQuery]pipeline.Fetcher, db *database.PriceDB, logger *slog.Logger, out io.Writer) (database.Run, error) {
	run := database.Run{StartedAt: time.Now().UTC(), Total: len(cfg.Routes)}
	fmt.Fprintf(out, "Scraping %d route(s) (concurrency: %d)...\n", len(cfg.Routes), cfg.BatchSize)

	bp := pipeline.NewBatchProcessor(
		func(q model.SearchQuery) *pipeline.Pipeline {
			return newRoutePipeline(scrapers[q], cfg.CSVPath, db, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var mu sync.Mutex
	runs := make([]*pipeline.Run, len(cfg.Routes))
	err := bp.ProcessBatchWithCallback(ctx, cfg.Routes, func(r *pipeline.Run, i int) {
		mu.Lock()
		defer mu.Unlock()
		runs[i] = r
		fmt.Fprintf(out, "[%d/%d] %s\n", i+1, len(cfg.Routes), describeRun(r))
	})

	run.FinishedAt = time.Now().UTC()
	run.Statuses = pipeline.Summarize(runs)
	fmt.Fprintf(out, "Done in %s: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond), formatStatuses(run.Statuses))

	if db != nil {
		// A cancelled run is still summarized; use a fresh context.
		id, saveErr := db.SaveRun(context.WithoutCancel(ctx), run)
		if saveErr != nil {
			logger.Error("failed to save run summary", "error", saveErr)
		} else {
			run.ID = id
		}
	}
	return run, err
}

// describeRun returns the progress line of a finished lookup.
func describeRun(r *pipeline.Run) string {
	obs := r.Observation
	switch {
	case r.Err != nil && obs.Status == "":
		return fmt.Sprintf("%s: aborted (%v)", r.Query.Label(), r.Err)
	case obs.Status.OK():
		return fmt.Sprintf("%s: %s (departs %s)", r.Query.Label(), obs.Price, obs.DepartureDate)
	default:
		return fmt.Sprintf("%s: %s %s", r.Query.Label(), obs.Status, obs.Notes)
	}
}

// formatStatuses renders status counts in a fixed order, e.g. "2 ok, 1 timeout".
func formatStatuses(counts map[model.Status]int) string {
	var parts []string
	for _, s := range []model.Status{model.StatusOK, model.StatusTimeout, model.StatusMissingPrice, model.StatusFetchError} {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	if len(parts) == 0 {
		return "no lookups"
	}
	return strings.Join(parts, ", ")
}
