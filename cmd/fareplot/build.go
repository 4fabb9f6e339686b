package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/fareplot/internal/config"
	"github.com/nao1215/fareplot/internal/site"
)

// errWasmExecRequired is returned when --wasm is given without --wasm-exec.
var errWasmExecRequired = errors.New("--wasm requires --wasm-exec (copy it from $(go env GOROOT)/lib/wasm/wasm_exec.js)")

// siteBuild holds the inputs of a site build.
type siteBuild struct {
	cfg        *config.Config
	wasmModule string
	wasmExec   string
}

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the charts and build the static site",
		Long: `Build renders the charts and writes the static site: index.html with the
filterable chart grid, its stylesheet and a charts.json manifest.

The route/date filters and the chart viewer run in the browser through the
chartfilter WebAssembly module, shipped with --wasm. Without it the page is
a static grid: the filter controls are hidden, the viewer is left out and
each chart links to its full-size image.

Examples:
  # Build site/ from the default CSV
  fareplot build

  # Build with the interactive filter
  GOOS=js GOARCH=wasm go build -o chartfilter.wasm ./cmd/chartfilter
  fareplot build --wasm chartfilter.wasm \
    --wasm-exec "$(go env GOROOT)/lib/wasm/wasm_exec.js"`,
		Args: cobra.NoArgs,
		RunE: runBuildCmd,
	}
	addSiteFlags(cmd)
	return cmd
}

// addSiteFlags adds the flags shared by build and serve.
func addSiteFlags(cmd *cobra.Command) {
	cmd.Flags().String("csv", config.DefaultCSVPath, "CSV time series file")
	cmd.Flags().String("site-dir", config.DefaultSiteDir, "Static site output directory")
	cmd.Flags().String("title", "", "Page title (default: site.title of the config file)")
	cmd.Flags().String("wasm", "", "chartfilter WebAssembly module to ship with the site")
	cmd.Flags().String("wasm-exec", "", "wasm_exec.js of the Go distribution that built --wasm")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .fareplot in current or home directory)")
	addChartFlags(cmd)
}

// readSiteFlags builds a siteBuild from the site flags and the
// configuration file.
func readSiteFlags(cmd *cobra.Command) (*siteBuild, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.CSVPath, err = flags.GetString("csv"); err != nil {
		return nil, err
	}
	if cfg.SiteDir, err = flags.GetString("site-dir"); err != nil {
		return nil, err
	}
	if cfg.SiteTitle, err = flags.GetString("title"); err != nil {
		return nil, err
	}
	if err := readChartFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if err := loadConfigFile(cfg); err != nil {
		return nil, err
	}

	b := &siteBuild{cfg: cfg}
	if b.wasmModule, err = flags.GetString("wasm"); err != nil {
		return nil, err
	}
	if b.wasmExec, err = flags.GetString("wasm-exec"); err != nil {
		return nil, err
	}
	if b.wasmModule != "" && b.wasmExec == "" {
		return nil, errWasmExecRequired
	}
	return b, nil
}

// runBuildCmd executes the build command.
func runBuildCmd(cmd *cobra.Command, _ []string) error {
	b, err := readSiteFlags(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := setupLogger(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	_, err = b.run(logger, cmd.OutOrStdout())
	return err
}

// run renders the charts and writes the site.
func (b *siteBuild) run(logger *slog.Logger, out io.Writer) (*site.Result, error) {
	all, rendered, err := renderCharts(b.cfg, logger, out)
	if err != nil {
		return nil, err
	}
	cards, err := site.Cards(b.cfg.SiteDir, all, rendered)
	if err != nil {
		return nil, err
	}

	result, err := site.Build(site.Options{
		Dir:        b.cfg.SiteDir,
		Title:      b.cfg.SiteTitle,
		Intro:      b.cfg.SiteIntro,
		Cards:      cards,
		WasmModule: b.wasmModule,
		WasmExec:   b.wasmExec,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build site: %w", err)
	}

	logger.Info("site built", "index", result.Index, "charts", result.Charts, "script", result.Script)
	fmt.Fprintf(out, "Built %s: %s\n", result.Index, result.Status)
	return result, nil
}
