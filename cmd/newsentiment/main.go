package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/newsentiment/internal/config"
	"github.com/IshaanNene/newsentiment/internal/observability"
	"github.com/IshaanNene/newsentiment/internal/sources"
)

var (
	cfgFile string
	verbose bool
	driver  string
	dsn     string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "newsentiment",
		Short: "News sentiment scraper and reporter",
		Long: `newsentiment collects articles from a fixed set of news sources, scores
their sentiment, stores them keyed by URL and renders reports, charts and
CSV exports from what was stored.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "storage driver: sqlite, postgres, mongodb, jsonl")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "storage DSN or file path")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(marketCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(wordcloudCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// app is what every command needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

func (a *app) Close() {
	if a.closer != nil {
		a.closer.Close()
	}
}

// setup loads and validates configuration, applies overrides and builds the
// logger.
func setup(overrides ...func(*config.Config)) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyStorageOverrides(cfg)
	for _, o := range overrides {
		o(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, closer, err := observability.NewLogger(cfg.Logging, os.Stderr, verbose)
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}
	return &app{cfg: cfg, logger: logger, closer: closer}, nil
}

func applyStorageOverrides(cfg *config.Config) {
	if driver != "" {
		cfg.Storage.Driver = strings.ToLower(driver)
	}
	if dsn != "" {
		cfg.Storage.DSN = dsn
	}
}

// sourceInfo returns every known source, unfiltered. Reports use it to look
// up the region and load method of stored rows.
func sourceInfo(cfg *config.Config) (*sources.Registry, error) {
	if cfg.Scraper.SourcesFile != "" {
		return sources.LoadFile(cfg.Scraper.SourcesFile)
	}
	return sources.Default(), nil
}

// buildRegistry selects the sources a scrape works on.
func buildRegistry(cfg *config.Config) (*sources.Registry, error) {
	reg, err := sourceInfo(cfg)
	if err != nil {
		return nil, err
	}
	reg, err = reg.Filter(cfg.Scraper.Sources)
	if err != nil {
		return nil, err
	}
	if cfg.Scraper.Method != "" {
		return reg.WithMethod(sources.Method(cfg.Scraper.Method))
	}
	return reg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
