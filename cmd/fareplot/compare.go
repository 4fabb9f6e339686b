package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/fareplot/internal/config"
	"github.com/nao1215/fareplot/internal/database"
	"github.com/nao1215/fareplot/internal/model"
	"github.com/nao1215/fareplot/internal/report"
)

// errNoHistory is returned when the history database has not been created.
var errNoHistory = errors.New("no price history yet (run 'fareplot scrape' first)")

// NewCompareCmd creates the compare command.
// This command compares the two latest prices of every tracked departure.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [route]",
		Short: "Compare the latest prices with the previous ones",
		Long: `Compare shows how the price of every tracked departure moved between its
two most recent observations, using the SQLite history written by
'fareplot scrape'.

A route argument such as STN-BGY limits the output to that route.

Examples:
  # Compare every tracked departure
  fareplot compare

  # Compare a single route
  fareplot compare STN-BGY

  # List the departures in the history with their latest price
  fareplot compare --list

  # Output the comparison as Markdown
  fareplot compare --markdown -o reports/changes.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List the departures in the history")
	addReportFlags(cmd)

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	if err := readReportFlags(cmd, cfg); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}

	var route string
	if len(args) == 1 {
		route = strings.ToUpper(strings.TrimSpace(args[0]))
	}

	// Flags are validated before the database is opened.
	db, err := openHistory(cfg.DBDir)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := commandContext(cmd)
	if list {
		return listSeries(ctx, db, route, cmd.OutOrStdout())
	}
	return runComparison(ctx, cfg, db, route, cmd.OutOrStdout())
}

// openHistory opens an existing history database.
func openHistory(dir string) (*database.PriceDB, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dir, opts)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", errNoHistory, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// runComparison writes the latest price change of every series of route,
// or of every series when route is empty.
func runComparison(ctx context.Context, cfg *config.Config, db *database.PriceDB, route string, out io.Writer) error {
	changes, err := db.Changes(ctx)
	if err != nil {
		return err
	}
	changes = filterChanges(changes, route)

	if len(changes) == 0 && !cfg.JSONReport {
		fmt.Fprintln(out, "No price history found.")
		return nil
	}

	return outputReport(cfg, &report.PriceReport{
		GeneratedAt: time.Now().UTC(),
		Changes:     changes,
	}, out)
}

// filterChanges keeps the changes of route; an empty route keeps all.
func filterChanges(changes []model.PriceChange, route string) []model.PriceChange {
	if route == "" {
		return changes
	}
	out := make([]model.PriceChange, 0, len(changes))
	for _, c := range changes {
		if c.Key.RouteID() == route {
			out = append(out, c)
		}
	}
	return out
}

// listSeries prints every series in the history with its latest price.
func listSeries(ctx context.Context, db *database.PriceDB, route string, out io.Writer) error {
	keys, err := db.ListSeries(ctx)
	if err != nil {
		return err
	}

	shown := 0
	for _, k := range keys {
		if route != "" && k.RouteID() != route {
			continue
		}
		s, err := db.History(ctx, k)
		if err != nil {
			return err
		}
		latest, ok := s.Latest()
		if !ok {
			continue
		}
		if shown == 0 {
			fmt.Fprintln(out, "Tracked departures:")
		}
		shown++
		fmt.Fprintf(out, "  %-32s %3d price(s), latest %s on %s\n",
			k.String(), len(s.Points),
			model.FormatPrice(latest.Price, s.Currency),
			latest.CapturedAt.UTC().Format("2006-01-02 15:04"))
	}
	if shown == 0 {
		fmt.Fprintln(out, "No price history found.")
	}
	return nil
}
