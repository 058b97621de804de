package observability

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters for scrape runs.
type Metrics struct {
	// Discovery
	ListingsFetched atomic.Int64
	ListingsFailed  atomic.Int64
	FeedsFetched    atomic.Int64
	LinksDiscovered atomic.Int64
	LinksFiltered   atomic.Int64

	// Extraction
	PagesFetched     atomic.Int64
	FetchFailures    atomic.Int64
	ExtractionMisses atomic.Int64
	ArticlesScraped  atomic.Int64

	// Scoring
	LabelPositive atomic.Int64
	LabelNegative atomic.Int64
	LabelNeutral  atomic.Int64

	// Persistence
	ArticlesSaved  atomic.Int64
	RecordsSkipped atomic.Int64
	StorageErrors  atomic.Int64

	// Engine
	ActiveWorkers atomic.Int32
	RunsCompleted atomic.Int64

	logger *slog.Logger
	mu     sync.Mutex
	server *http.Server
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

type sample struct {
	name  string
	help  string
	kind  string
	value int64
}

func (m *Metrics) samples() []sample {
	return []sample{
		{"newsentiment_listings_fetched_total", "Listing pages loaded", "counter", m.ListingsFetched.Load()},
		{"newsentiment_listings_failed_total", "Listing pages that failed to load", "counter", m.ListingsFailed.Load()},
		{"newsentiment_feeds_fetched_total", "Feeds read", "counter", m.FeedsFetched.Load()},
		{"newsentiment_links_discovered_total", "Candidate article URLs accepted", "counter", m.LinksDiscovered.Load()},
		{"newsentiment_links_filtered_total", "Candidate URLs rejected", "counter", m.LinksFiltered.Load()},
		{"newsentiment_pages_fetched_total", "Article pages loaded", "counter", m.PagesFetched.Load()},
		{"newsentiment_fetch_failures_total", "Article pages that failed to load", "counter", m.FetchFailures.Load()},
		{"newsentiment_extraction_misses_total", "Article pages without title or body", "counter", m.ExtractionMisses.Load()},
		{"newsentiment_articles_scraped_total", "Articles extracted", "counter", m.ArticlesScraped.Load()},
		{"newsentiment_label_positive_total", "Articles labelled positive", "counter", m.LabelPositive.Load()},
		{"newsentiment_label_negative_total", "Articles labelled negative", "counter", m.LabelNegative.Load()},
		{"newsentiment_label_neutral_total", "Articles labelled neutral", "counter", m.LabelNeutral.Load()},
		{"newsentiment_articles_saved_total", "Articles written to storage", "counter", m.ArticlesSaved.Load()},
		{"newsentiment_records_skipped_total", "Malformed records skipped at write time", "counter", m.RecordsSkipped.Load()},
		{"newsentiment_storage_errors_total", "Failed write bursts", "counter", m.StorageErrors.Load()},
		{"newsentiment_active_workers", "Currently busy workers", "gauge", int64(m.ActiveWorkers.Load())},
		{"newsentiment_runs_completed_total", "Scrape runs finished", "counter", m.RunsCompleted.Load()},
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	for _, s := range m.samples() {
		fmt.Fprintf(w, "# HELP %s %s\n", s.name, s.help)
		fmt.Fprintf(w, "# TYPE %s %s\n", s.name, s.kind)
		fmt.Fprintf(w, "%s %d\n", s.name, s.value)
	}
}

// StartServer binds the metrics port and serves in the background. A port
// that cannot be bound is reported to the caller.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	m.mu.Lock()
	m.server = srv
	m.mu.Unlock()

	m.logger.Info("metrics server started", "addr", ln.Addr().String(), "path", path)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()
	return nil
}

// Close stops the metrics server if one was started.
func (m *Metrics) Close() error {
	m.mu.Lock()
	srv := m.server
	m.server = nil
	m.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Close()
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	for _, s := range m.samples() {
		out[s.name] = s.value
	}
	return out
}
