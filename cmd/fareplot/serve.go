package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/fareplot/internal/config"
	"github.com/nao1215/fareplot/internal/site"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview the static site over HTTP",
		Long: `Serve builds the site and serves it over HTTP until interrupted.

With --watch, the site is rebuilt whenever the CSV time series changes,
for example while 'fareplot scrape --interval' runs in another terminal.

Examples:
  # Serve site/ on http://127.0.0.1:8080
  fareplot serve

  # Rebuild on every new observation
  fareplot serve --watch --addr :9000`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", config.DefaultServeAddress, "Listen address")
	cmd.Flags().BoolP("watch", "w", false, "Rebuild the site when the CSV changes")
	cmd.Flags().Duration("debounce", site.DefaultDebounce, "Quiet period before a rebuild")
	addSiteFlags(cmd)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	b, err := readSiteFlags(cmd)
	if err != nil {
		return err
	}
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}

	logger, closer, err := setupLogger(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	out := cmd.OutOrStdout()
	if _, err := b.run(logger, out); err != nil {
		return err
	}
	fmt.Fprintf(out, "Serving %s on http://%s\n", b.cfg.SiteDir, addr)

	g, ctx := errgroup.WithContext(commandContext(cmd))
	g.Go(func() error {
		return site.Serve(ctx, addr, b.cfg.SiteDir, logger)
	})
	if watch {
		g.Go(func() error {
			return site.Watch(ctx, b.cfg.CSVPath, debounce, func() error {
				_, err := b.run(logger, out)
				return err
			}, logger)
		})
	}

	return g.Wait()
}
