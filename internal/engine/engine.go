package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/IshaanNene/newsentiment/internal/config"
	"github.com/IshaanNene/newsentiment/internal/fetcher"
	"github.com/IshaanNene/newsentiment/internal/observability"
	"github.com/IshaanNene/newsentiment/internal/pipeline"
	"github.com/IshaanNene/newsentiment/internal/sources"
	"github.com/IshaanNene/newsentiment/internal/storage"
	"github.com/IshaanNene/newsentiment/internal/types"
)

// ErrAlreadyRunning is returned when Run is called on a busy engine.
var ErrAlreadyRunning = errors.New("engine is already running")

// State represents the engine's current lifecycle state.
type State int32

const (
	StateIdle    State = 0
	StateRunning State = 1
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Stats tracks counters for the current run.
type Stats struct {
	URLsDiscovered   atomic.Int64
	PagesFetched     atomic.Int64
	FetchFailures    atomic.Int64
	ExtractionMisses atomic.Int64
	ArticlesScraped  atomic.Int64
	ArticlesSaved    atomic.Int64
	RecordsSkipped   atomic.Int64
	ActiveWorkers    atomic.Int32
	StartTime        time.Time
}

// Snapshot returns a copy of stats safe for reading.
func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"urls_discovered":   s.URLsDiscovered.Load(),
		"pages_fetched":     s.PagesFetched.Load(),
		"fetch_failures":    s.FetchFailures.Load(),
		"extraction_misses": s.ExtractionMisses.Load(),
		"articles_scraped":  s.ArticlesScraped.Load(),
		"articles_saved":    s.ArticlesSaved.Load(),
		"records_skipped":   s.RecordsSkipped.Load(),
		"active_workers":    s.ActiveWorkers.Load(),
		"elapsed":           time.Since(s.StartTime).String(),
	}
}

// Sink persists a burst of annotated articles.
type Sink interface {
	SaveArticles(ctx context.Context, articles []*types.Article) (storage.SaveResult, error)
}

// Deps are the collaborators an Engine drives.
type Deps struct {
	Registry    *sources.Registry
	Loader      Loader
	Feeds       fetcher.Fetcher
	Scorer      pipeline.Annotator
	Categorizer pipeline.Classifier

	// Store may be nil, in which case nothing is persisted.
	Store   Sink
	Metrics *observability.Metrics
}

// Engine runs discovery, extraction, annotation and persistence for every
// registered source.
type Engine struct {
	cfg        *config.Config
	deps       Deps
	discoverer *Discoverer
	extractor  *Extractor
	metrics    *observability.Metrics
	logger     *slog.Logger

	state atomic.Int32
	mu    sync.Mutex
	stats *Stats
}

// New creates a new Engine with the given configuration.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) (*Engine, error) {
	switch {
	case deps.Registry == nil || deps.Registry.Len() == 0:
		return nil, fmt.Errorf("engine needs at least one source")
	case deps.Loader == nil:
		return nil, fmt.Errorf("engine needs a page loader")
	case deps.Scorer == nil || deps.Categorizer == nil:
		return nil, fmt.Errorf("engine needs a scorer and a categorizer")
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NewMetrics(logger)
	}

	return &Engine{
		cfg:        cfg,
		deps:       deps,
		discoverer: NewDiscoverer(deps.Loader, deps.Feeds, cfg.Scraper.InvalidPatterns, cfg.Scraper.UseFeeds, deps.Metrics, logger),
		extractor:  NewExtractor(cfg.Extract, logger),
		metrics:    deps.Metrics,
		logger:     logger.With("component", "engine"),
		stats:      &Stats{},
	}, nil
}

// State returns the current engine state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Stats returns the counters of the current or last run.
func (e *Engine) Stats() *Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Run processes every source in registry order. Sources are handled one
// after another; each source's articles are spread across the worker pool
// and written in a single burst. Individual page failures never abort the
// run. The returned summary is complete even when ctx ends the run early,
// in which case ctx's error is returned alongside it.
func (e *Engine) Run(ctx context.Context) (*RunSummary, error) {
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil, ErrAlreadyRunning
	}
	defer e.state.Store(int32(StateIdle))

	stats := &Stats{StartTime: time.Now()}
	e.mu.Lock()
	e.stats = stats
	e.mu.Unlock()

	e.discoverer.Reset()
	chain := pipeline.Annotation(pipeline.New(e.logger), e.deps.Scorer, e.deps.Categorizer, e.cfg.Extract.MinBodyChars)

	summary := &RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: stats.StartTime,
	}
	logger := e.logger.With("run_id", summary.RunID)
	logger.Info("run starting",
		"sources", e.deps.Registry.Names(),
		"max_articles_per_source", e.cfg.Scraper.MaxArticlesPerSource,
		"max_workers", e.cfg.Scraper.MaxWorkers,
	)

	for _, src := range e.deps.Registry.All() {
		if ctx.Err() != nil {
			break
		}
		ss := e.runSource(ctx, src, chain, stats, logger)
		summary.Sources = append(summary.Sources, ss)
	}

	summary.Elapsed = time.Since(stats.StartTime)
	summary.total()
	e.metrics.RunsCompleted.Add(1)

	logger.Info("run complete",
		"discovered", summary.Total.Discovered,
		"extracted", summary.Total.Extracted,
		"saved", summary.Total.Saved,
		"failures", summary.Total.Failures,
		"elapsed", summary.Elapsed.Round(time.Millisecond),
	)
	return summary, ctx.Err()
}

func (e *Engine) runSource(ctx context.Context, src *sources.Compiled, chain *pipeline.Pipeline, stats *Stats, logger *slog.Logger) SourceSummary {
	start := time.Now()
	logger = logger.With("source", src.Name)
	ss := SourceSummary{Source: src.Name, Method: string(src.Method)}

	urls := e.discoverer.Discover(ctx, src, e.cfg.Scraper.MaxArticlesPerSource)
	ss.Discovered = len(urls)
	stats.URLsDiscovered.Add(int64(len(urls)))
	logger.Info("found article URLs", "count", len(urls))

	articles, tally := e.scrape(ctx, src, urls, chain, stats)
	ss.Extracted = len(articles)
	ss.Misses = tally.misses
	ss.Failures = tally.failures

	if len(articles) > 0 && e.deps.Store != nil {
		res, err := e.deps.Store.SaveArticles(ctx, articles)
		ss.Saved, ss.Skipped = res.Saved, res.Skipped
		stats.ArticlesSaved.Add(int64(res.Saved))
		stats.RecordsSkipped.Add(int64(res.Skipped))
		e.metrics.ArticlesSaved.Add(int64(res.Saved))
		e.metrics.RecordsSkipped.Add(int64(res.Skipped))
		if err != nil {
			e.metrics.StorageErrors.Add(1)
			ss.Err = err.Error()
			logger.Error("saving articles failed", "error", err)
		}
	}

	ss.Elapsed = time.Since(start)
	logger.Info("source complete",
		"extracted", ss.Extracted,
		"misses", ss.Misses,
		"failures", ss.Failures,
		"saved", ss.Saved,
		"elapsed", ss.Elapsed.Round(time.Millisecond),
	)
	return ss
}

// SourceSummary reports what happened to one source in a run.
type SourceSummary struct {
	Source     string        `json:"source"`
	Method     string        `json:"method,omitempty"`
	Discovered int           `json:"discovered"`
	Extracted  int           `json:"extracted"`
	Misses     int           `json:"misses"`
	Failures   int           `json:"failures"`
	Saved      int           `json:"saved"`
	Skipped    int           `json:"skipped"`
	Elapsed    time.Duration `json:"elapsed"`
	Err        string        `json:"error,omitempty"`
}

// RunSummary reports a whole run.
type RunSummary struct {
	RunID     string          `json:"run_id"`
	StartedAt time.Time       `json:"started_at"`
	Elapsed   time.Duration   `json:"elapsed"`
	Sources   []SourceSummary `json:"sources"`
	Total     SourceSummary   `json:"total"`
}

func (s *RunSummary) total() {
	t := SourceSummary{Source: "total", Elapsed: s.Elapsed}
	for _, ss := range s.Sources {
		t.Discovered += ss.Discovered
		t.Extracted += ss.Extracted
		t.Misses += ss.Misses
		t.Failures += ss.Failures
		t.Saved += ss.Saved
		t.Skipped += ss.Skipped
	}
	s.Total = t
}

// Rate returns extracted articles per second over the whole run.
func (s *RunSummary) Rate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Total.Extracted) / s.Elapsed.Seconds()
}

// Source returns the summary for one source.
func (s *RunSummary) Source(name string) (SourceSummary, bool) {
	for _, ss := range s.Sources {
		if ss.Source == name {
			return ss, true
		}
	}
	return SourceSummary{}, false
}

// Print writes a human readable summary table.
func (s *RunSummary) Print(w io.Writer) {
	rows := append([]SourceSummary(nil), s.Sources...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Extracted > rows[j].Extracted })

	fmt.Fprintf(w, "\nScrape run %s\n", s.RunID)
	fmt.Fprintf(w, "%-12s %10s %10s %8s %9s %7s %10s\n", "SOURCE", "DISCOVERED", "EXTRACTED", "MISSES", "FAILURES", "SAVED", "ELAPSED")
	for _, r := range append(rows, s.Total) {
		fmt.Fprintf(w, "%-12s %10d %10d %8d %9d %7d %10s\n",
			r.Source, r.Discovered, r.Extracted, r.Misses, r.Failures, r.Saved, r.Elapsed.Round(time.Millisecond))
		if r.Err != "" {
			fmt.Fprintf(w, "  error: %s\n", r.Err)
		}
	}
	fmt.Fprintf(w, "Total time: %s (%.2f articles/s)\n", s.Elapsed.Round(time.Millisecond), s.Rate())
}
