package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/newsentiment/internal/categorize"
	"github.com/IshaanNene/newsentiment/internal/config"
	"github.com/IshaanNene/newsentiment/internal/engine"
	"github.com/IshaanNene/newsentiment/internal/observability"
	"github.com/IshaanNene/newsentiment/internal/sentiment"
	"github.com/IshaanNene/newsentiment/internal/storage"
	"github.com/IshaanNene/newsentiment/internal/types"
)

var (
	maxArticles   int
	maxWorkers    int
	headless      bool
	sourceNames   string
	method        string
	backend       string
	dryRun        bool
	enableMetrics bool
)

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape, score and store articles from every configured source",
		RunE:  runScrape,
	}

	cmd.Flags().IntVarP(&maxArticles, "max-articles", "n", 0, "maximum articles per source (0 = config value)")
	cmd.Flags().IntVarP(&maxWorkers, "workers", "w", 0, "worker pool size (0 = config value)")
	cmd.Flags().BoolVar(&headless, "headless", true, "run the browser without a visible window")
	cmd.Flags().StringVarP(&sourceNames, "sources", "s", "", "comma-separated source names (default: all)")
	cmd.Flags().StringVar(&method, "method", "", "force every source to load via 'http' or 'browser'")
	cmd.Flags().StringVar(&backend, "backend", "", "sentiment backend: vader or keywords")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "scrape and score without writing to storage")
	cmd.Flags().BoolVar(&enableMetrics, "metrics", false, "serve Prometheus metrics during the run")

	return cmd
}

// applyScrapeOverrides applies command-line flag values to the config.
func applyScrapeOverrides(cmd *cobra.Command) func(*config.Config) {
	return func(cfg *config.Config) {
		if maxArticles > 0 {
			cfg.Scraper.MaxArticlesPerSource = maxArticles
		}
		if maxWorkers > 0 {
			cfg.Scraper.MaxWorkers = maxWorkers
		}
		if cmd.Flags().Changed("headless") {
			cfg.Scraper.Headless = headless
		}
		if names := splitList(sourceNames); len(names) > 0 {
			cfg.Scraper.Sources = names
		}
		if method != "" {
			cfg.Scraper.Method = method
		}
		if backend != "" {
			cfg.Sentiment.Backend = backend
		}
		if enableMetrics {
			cfg.Metrics.Enabled = true
		}
	}
}

func runScrape(cmd *cobra.Command, _ []string) error {
	a, err := setup(applyScrapeOverrides(cmd))
	if err != nil {
		return err
	}
	defer a.Close()
	cfg, logger := a.cfg, a.logger

	reg, err := buildRegistry(cfg)
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	categorizer, err := categorize.New(categorize.DefaultCategories(), cfg.Categorizer.Strategy)
	if err != nil {
		return fmt.Errorf("create categorizer: %w", err)
	}
	scorer := sentiment.New(cfg.Sentiment.Backend, cfg.Sentiment.Threshold, logger)

	metrics := observability.NewMetrics(logger)
	if cfg.Metrics.Enabled {
		if err := metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		}
		defer metrics.Close()
	}

	var sink engine.Sink
	if !dryRun {
		store, err := storage.Open(cfg.Storage, logger)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer store.Close()
		if err := store.Init(cmd.Context()); err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		sink = store
	}

	logger.Info("starting scrape",
		"sources", reg.Names(),
		"max_articles_per_source", cfg.Scraper.MaxArticlesPerSource,
		"max_workers", cfg.Scraper.MaxWorkers,
		"headless", cfg.Scraper.Headless,
		"sentiment", scorer.Backend(),
		"storage", cfg.Storage.Driver,
		"dry_run", dryRun,
	)

	// Browser sessions are allocated here, before any source is processed.
	loader, err := engine.NewPageLoader(cfg, reg, logger)
	if err != nil {
		if errors.Is(err, types.ErrNoSessions) {
			logger.Error("no browser sessions could be started", "error", err)
		}
		return fmt.Errorf("setup: %w", err)
	}
	defer loader.Close()

	eng, err := engine.New(cfg, engine.Deps{
		Registry:    reg,
		Loader:      loader,
		Feeds:       loader.HTTP(),
		Scorer:      scorer,
		Categorizer: categorizer,
		Store:       sink,
		Metrics:     metrics,
	}, logger)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := eng.Run(ctx)
	if summary != nil {
		summary.Print(os.Stdout)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scrape: %w", err)
	}
	return nil
}
