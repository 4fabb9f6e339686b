package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/fareplot/internal/config"
	flog "github.com/nao1215/fareplot/internal/log"
)

// NewRootCmd creates the root command for fareplot.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fareplot",
		Short: "Track return flight prices and chart them",
		Long: `fareplot is a small personal price tracker for return flights.

It looks up the cheapest return fare of each configured route, appends the
result to a CSV time series, renders one price chart per route and departure
date and builds a static site where the charts can be filtered by route and
date and enlarged in a viewer.

Run 'fareplot init' to create a configuration file listing your routes.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-file", config.DefaultLogFile,
		"Also write logs to this file (empty disables it)")

	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewPlotCmd())
	cmd.AddCommand(NewBuildCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context so long running commands can shut down cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getLogFileFlag retrieves the log file from the command or its parent.
func getLogFileFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("log-file")
	if err != nil {
		path, err = cmd.Root().PersistentFlags().GetString("log-file")
		if err != nil {
			return ""
		}
	}
	return path
}

// setupLogger creates the secure logger of a command. Logs go to stderr and,
// when configured, to the log file. The caller must close the returned
// closer.
func setupLogger(cmd *cobra.Command) (*slog.Logger, io.Closer, error) {
	logger, closer, err := flog.Setup(cmd.ErrOrStderr(), getLogFileFlag(cmd), getVerboseFlag(cmd))
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return logger, closer, nil
}

// commandContext returns the command context, or a background context when
// the command runs outside Execute (tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
