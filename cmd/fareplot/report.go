package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/fareplot/internal/config"
	"github.com/nao1215/fareplot/internal/database"
	"github.com/nao1215/fareplot/internal/report"
	"github.com/nao1215/fareplot/internal/series"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the latest prices of every tracked departure",
		Long: `Report writes a Markdown summary of the tracked departures: the latest,
lowest and highest price of each, how the latest price moved and the
outcome of the most recent scrape run.

The CSV time series is imported into the SQLite history first, so the
report also covers rows recorded with --no-db or on another machine.

Examples:
  # Print the Markdown report
  fareplot report

  # Write it next to the site
  fareplot report -o site/REPORT.md

  # Machine readable output
  fareplot report --json`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().String("csv", config.DefaultCSVPath,
		"CSV time series to import before reporting (empty skips the import)")
	addReportFlags(cmd)

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	if err := readReportFlags(cmd, cfg); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if !cfg.JSONReport {
		cfg.MarkdownReport = true
	}
	var err error
	if cfg.CSVPath, err = cmd.Flags().GetString("csv"); err != nil {
		return err
	}

	logger, closer, err := setupLogger(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rep, err := buildPriceReport(commandContext(cmd), db, cfg.CSVPath, logger)
	if err != nil {
		return err
	}
	return outputReport(cfg, rep, cmd.OutOrStdout())
}

// buildPriceReport imports csvPath into db and assembles the report from
// the history.
func buildPriceReport(ctx context.Context, db *database.PriceDB, csvPath string, logger *slog.Logger) (*report.PriceReport, error) {
	if csvPath != "" {
		obs, err := series.ReadFile(csvPath)
		if err != nil {
			return nil, err
		}
		added, err := db.Import(ctx, obs)
		if err != nil {
			return nil, err
		}
		logger.Info("csv imported", "csv", csvPath, "rows", len(obs), "new", added)
	}

	rep := &report.PriceReport{GeneratedAt: time.Now().UTC()}

	keys, err := db.ListSeries(ctx)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		s, err := db.History(ctx, k)
		if err != nil {
			return nil, err
		}
		if len(s.Points) > 0 {
			rep.Series = append(rep.Series, s.Summary())
		}
	}

	if rep.Changes, err = db.Changes(ctx); err != nil {
		return nil, err
	}

	run, err := db.LatestRun(ctx)
	if err != nil {
		return nil, err
	}
	if run != nil {
		rep.Statuses = run.Statuses
	}
	return rep, nil
}
