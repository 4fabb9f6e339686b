package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/fareplot/internal/chart"
	"github.com/nao1215/fareplot/internal/config"
	"github.com/nao1215/fareplot/internal/model"
	"github.com/nao1215/fareplot/internal/series"
	"github.com/nao1215/fareplot/internal/site"
)

// NewPlotCmd creates the plot command.
func NewPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render one price chart per route and departure date",
		Long: `Plot reads the CSV time series and renders one line chart per route and
departure date, price over capture time.

Rows without a price (failed lookups) are skipped. Charts whose content did
not change are not rewritten, so repeated runs keep file timestamps stable.

Examples:
  # Render PNG charts into site/charts
  fareplot plot

  # Render SVG charts labelled in euros into another directory
  fareplot plot --format svg --currency EUR --output-dir out/charts`,
		Args: cobra.NoArgs,
		RunE: runPlotCmd,
	}

	cmd.Flags().String("csv", config.DefaultCSVPath, "CSV time series file")
	cmd.Flags().StringP("output-dir", "o", filepath.Join(config.DefaultSiteDir, config.DefaultChartDir),
		"Directory receiving the charts")
	addChartFlags(cmd)

	return cmd
}

// addChartFlags adds the flags shared by every command that renders charts.
func addChartFlags(cmd *cobra.Command) {
	cmd.Flags().String("currency", "",
		"Currency shown on the price axis (default: the currency of each series)")
	cmd.Flags().String("format", string(chart.FormatPNG), "Chart format: png or svg")
}

// runPlotCmd executes the plot command.
func runPlotCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	var err error
	if cfg.CSVPath, err = cmd.Flags().GetString("csv"); err != nil {
		return err
	}
	if cfg.ChartDir, err = cmd.Flags().GetString("output-dir"); err != nil {
		return err
	}
	cfg.SiteDir = ""
	if err := readChartFlags(cmd, cfg); err != nil {
		return err
	}

	logger, closer, err := setupLogger(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	_, _, err = renderCharts(cfg, logger, cmd.OutOrStdout())
	return err
}

// readChartFlags copies the chart flags into cfg.
func readChartFlags(cmd *cobra.Command, cfg *config.Config) error {
	cur, err := cmd.Flags().GetString("currency")
	if err != nil {
		return err
	}
	if err := config.ValidateCurrency(cur); err != nil {
		return err
	}
	cfg.Currency = strings.ToUpper(cur)

	if cfg.ChartFormat, err = cmd.Flags().GetString("format"); err != nil {
		return err
	}
	_, err = chart.ParseFormat(cfg.ChartFormat)
	return err
}

// renderCharts groups the CSV into series and renders them into
// cfg.ChartPath(). An empty cfg.Currency labels each chart with the
// currency of its series.
func renderCharts(cfg *config.Config, logger *slog.Logger, out io.Writer) ([]model.Series, []chart.Rendered, error) {
	obs, err := series.ReadFile(cfg.CSVPath)
	if err != nil {
		return nil, nil, err
	}
	all := series.Group(obs)
	logger.Info("series loaded", "csv", cfg.CSVPath, "rows", len(obs), "series", len(all))

	format, err := chart.ParseFormat(cfg.ChartFormat)
	if err != nil {
		return nil, nil, err
	}
	opts := chart.Options{
		OutputDir: cfg.ChartPath(),
		Currency:  cfg.Currency,
		Format:    format,
	}
	if cfg.SiteDir != "" {
		opts.Fingerprints = site.Fingerprints(cfg.SiteDir)
	}
	rendered, err := chart.Render(all, opts)
	if err != nil {
		return nil, nil, err
	}

	unchanged := 0
	for _, r := range rendered {
		if r.Unchanged {
			unchanged++
			logger.Debug("chart unchanged", "path", r.Path)
			continue
		}
		logger.Info("chart written", "series", r.Key.String(), "path", r.Path)
	}
	fmt.Fprintf(out, "Rendered %d chart(s) into %s (%d unchanged)\n", len(rendered), cfg.ChartPath(), unchanged)
	return all, rendered, nil
}
