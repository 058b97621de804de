// Package newsentiment is the library entry point for embedding the
// scraper and its reports in other programs.
//
// Example usage:
//
//	s, err := newsentiment.New(
//	    newsentiment.WithSources("bbc", "guardian"),
//	    newsentiment.WithMaxArticles(20),
//	    newsentiment.WithStorage("jsonl", "./output/articles.jsonl"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	summary, err := s.Scrape(ctx)
//	summary.Print(os.Stdout)
//
//	text, err := s.Summary(ctx)
package newsentiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/IshaanNene/newsentiment/internal/categorize"
	"github.com/IshaanNene/newsentiment/internal/config"
	"github.com/IshaanNene/newsentiment/internal/engine"
	"github.com/IshaanNene/newsentiment/internal/report"
	"github.com/IshaanNene/newsentiment/internal/sentiment"
	"github.com/IshaanNene/newsentiment/internal/sources"
	"github.com/IshaanNene/newsentiment/internal/storage"
	"github.com/IshaanNene/newsentiment/internal/types"
)

// Re-exported types so callers never import internal packages.
type (
	Config       = config.Config
	Article      = types.Article
	Label        = types.SentimentLabel
	Source       = sources.Source
	Selectors    = sources.Selectors
	Query        = storage.Query
	RunSummary   = engine.RunSummary
	Trends       = report.Trends
	MarketReport = report.MarketReport
	ExportResult = report.ExportResult
)

// Sentiment labels.
const (
	Positive = types.Positive
	Negative = types.Negative
	Neutral  = types.Neutral
)

// Load methods for custom sources.
const (
	MethodHTTP    = sources.MethodHTTP
	MethodBrowser = sources.MethodBrowser
)

// Option configures a Scraper.
type Option func(*settings)

type settings struct {
	cfg     *config.Config
	custom  []Source
	logger  *slog.Logger
	verbose bool
}

// WithSources restricts scraping to the named built-in sources.
func WithSources(names ...string) Option {
	return func(s *settings) { s.cfg.Scraper.Sources = names }
}

// WithCustomSources replaces the built-in sources.
func WithCustomSources(list ...Source) Option {
	return func(s *settings) { s.custom = list }
}

// WithMaxArticles caps discovery and extraction per source.
func WithMaxArticles(n int) Option {
	return func(s *settings) { s.cfg.Scraper.MaxArticlesPerSource = n }
}

// WithWorkers sets the worker pool size.
func WithWorkers(n int) Option {
	return func(s *settings) { s.cfg.Scraper.MaxWorkers = n }
}

// WithHeadless controls whether the browser shows a window.
func WithHeadless(headless bool) Option {
	return func(s *settings) { s.cfg.Scraper.Headless = headless }
}

// WithMethod forces every source through one load method.
func WithMethod(m sources.Method) Option {
	return func(s *settings) { s.cfg.Scraper.Method = string(m) }
}

// WithStorage selects the storage backend and its DSN or file path.
func WithStorage(driver, dsn string) Option {
	return func(s *settings) {
		s.cfg.Storage.Driver = driver
		s.cfg.Storage.DSN = dsn
	}
}

// WithSentimentBackend selects "vader" or "keywords".
func WithSentimentBackend(backend string) Option {
	return func(s *settings) { s.cfg.Sentiment.Backend = backend }
}

// WithOutputDir sets where charts and exports are written.
func WithOutputDir(dir string) Option {
	return func(s *settings) {
		s.cfg.Report.OutputDir = dir
		s.cfg.Report.ExportDir = filepath.Join(dir, "tableau")
	}
}

// WithLogger sets the logger. The default logs warnings to stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithVerbose enables debug-level logging on the default logger.
func WithVerbose() Option {
	return func(s *settings) { s.verbose = true }
}

// Scraper is the high-level API over the scrape engine and the stored
// article set.
type Scraper struct {
	cfg         *config.Config
	registry    *sources.Registry
	all         *sources.Registry
	scorer      *sentiment.Scorer
	categorizer *categorize.Categorizer
	store       storage.Store
	logger      *slog.Logger
}

// LoadConfig reads configuration the way the command line tool does.
func LoadConfig(path string) (*Config, error) { return config.Load(path) }

// New creates a Scraper from the default configuration.
func New(opts ...Option) (*Scraper, error) {
	return NewWithConfig(config.DefaultConfig(), opts...)
}

// NewWithConfig creates a Scraper from a loaded configuration. cfg itself
// is not modified.
func NewWithConfig(cfg *config.Config, opts ...Option) (*Scraper, error) {
	base := *cfg
	st := &settings{cfg: &base}
	for _, opt := range opts {
		opt(st)
	}
	if err := config.Validate(st.cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := st.logger
	if logger == nil {
		level := slog.LevelWarn
		if st.verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	all := sources.Default()
	if len(st.custom) > 0 {
		var err error
		if all, err = sources.New(st.custom...); err != nil {
			return nil, err
		}
	}
	reg, err := all.Filter(st.cfg.Scraper.Sources)
	if err != nil {
		return nil, err
	}
	if st.cfg.Scraper.Method != "" {
		if reg, err = reg.WithMethod(sources.Method(st.cfg.Scraper.Method)); err != nil {
			return nil, err
		}
	}

	categorizer, err := categorize.New(categorize.DefaultCategories(), st.cfg.Categorizer.Strategy)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(st.cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		cfg:         st.cfg,
		registry:    reg,
		all:         all,
		scorer:      sentiment.New(st.cfg.Sentiment.Backend, st.cfg.Sentiment.Threshold, logger),
		categorizer: categorizer,
		store:       store,
		logger:      logger,
	}, nil
}

// Sources returns the names of the sources a Scrape visits.
func (s *Scraper) Sources() []string { return s.registry.Names() }

// Scrape runs one full pass over every selected source and stores the
// results. The summary is returned even when the run was cut short.
func (s *Scraper) Scrape(ctx context.Context) (*RunSummary, error) {
	if err := s.store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	loader, err := engine.NewPageLoader(s.cfg, s.registry, s.logger)
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	defer loader.Close()

	eng, err := engine.New(s.cfg, engine.Deps{
		Registry:    s.registry,
		Loader:      loader,
		Feeds:       loader.HTTP(),
		Scorer:      s.scorer,
		Categorizer: s.categorizer,
		Store:       s.store,
	}, s.logger)
	if err != nil {
		return nil, err
	}
	return eng.Run(ctx)
}

// Analyze scores and categorizes a title and body without fetching
// anything or touching storage.
func (s *Scraper) Analyze(title, body string) *Article {
	a := types.NewArticle("", "", title, body)
	s.scorer.Annotate(a)
	a.Category = s.categorizer.Categorize(a.Text())
	return a
}

// Articles returns stored articles matching q, newest scrape first.
func (s *Scraper) Articles(ctx context.Context, q Query) ([]*Article, error) {
	if err := s.store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return s.store.Articles(ctx, q)
}

func (s *Scraper) recent(ctx context.Context) ([]*Article, error) {
	return s.Articles(ctx, Query{Limit: s.cfg.Report.Limit})
}

// Trends aggregates the most recent stored articles.
func (s *Scraper) Trends(ctx context.Context) (*Trends, error) {
	articles, err := s.recent(ctx)
	if err != nil {
		return nil, err
	}
	return report.AnalyzeTrends(articles, s.cfg.Report.TrendDays)
}

// Summary renders the textual digest of the most recent stored articles.
func (s *Scraper) Summary(ctx context.Context) (string, error) {
	articles, err := s.recent(ctx)
	if err != nil {
		return "", err
	}
	return report.SummaryReport(articles, s.cfg.Report.TrendDays)
}

// Market builds the market report of the most recent stored articles.
func (s *Scraper) Market(ctx context.Context) (*MarketReport, error) {
	articles, err := s.recent(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildMarketReport(articles, s.all)
}

// Dashboard renders the chart panel and returns its path.
func (s *Scraper) Dashboard(ctx context.Context) (string, error) {
	articles, err := s.recent(ctx)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.cfg.Report.OutputDir, "news_sentiment_dashboard.png")
	return path, report.CreateVisualizations(articles, path, s.cfg.Report.TrendDays)
}

// Export writes the CSV exports into the configured export directory.
func (s *Scraper) Export(ctx context.Context) (*ExportResult, error) {
	articles, err := s.recent(ctx)
	if err != nil {
		return nil, err
	}
	return report.Export(articles, s.all, s.cfg.Report.ExportDir)
}

// Close releases the store.
func (s *Scraper) Close() error { return s.store.Close() }
