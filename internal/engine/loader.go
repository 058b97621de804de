package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/newsentiment/internal/config"
	"github.com/IshaanNene/newsentiment/internal/fetcher"
	"github.com/IshaanNene/newsentiment/internal/sources"
	"github.com/IshaanNene/newsentiment/internal/types"
)

// Loader loads a page the way its source requires.
type Loader interface {
	Load(ctx context.Context, src *sources.Compiled, rawURL string) (*types.Response, error)
}

// PageLoader routes each load to the HTTP fetcher or to a pooled browser
// session depending on the source's method.
type PageLoader struct {
	http    fetcher.Fetcher
	browser *fetcher.BrowserPool
	logger  *slog.Logger
}

// NewPageLoader builds the fetchers the registry needs. The browser pool is
// only started when some source renders with the browser, and failing to
// obtain any session is returned as a setup error.
func NewPageLoader(cfg *config.Config, reg *sources.Registry, logger *slog.Logger) (*PageLoader, error) {
	httpFetcher, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create http fetcher: %w", err)
	}

	l := &PageLoader{
		http:   httpFetcher,
		logger: logger.With("component", "loader"),
	}

	if reg.NeedsBrowser() {
		pool, err := fetcher.NewBrowserPool(cfg, cfg.Scraper.MaxWorkers, logger)
		if err != nil {
			_ = httpFetcher.Close()
			return nil, err
		}
		l.browser = pool
	}
	return l, nil
}

// NewHTTPLoader builds a loader backed only by an HTTP fetcher.
func NewHTTPLoader(f fetcher.Fetcher, logger *slog.Logger) *PageLoader {
	return &PageLoader{http: f, logger: logger.With("component", "loader")}
}

// HTTP returns the plain HTTP fetcher, used for feeds.
func (l *PageLoader) HTTP() fetcher.Fetcher { return l.http }

// Load fetches rawURL. Browser loads hold one session for their whole
// duration and hand it back on every exit path.
func (l *PageLoader) Load(ctx context.Context, src *sources.Compiled, rawURL string) (*types.Response, error) {
	opts := fetcher.Options{Scroll: src.Scroll, Overlays: src.Source.Overlays}

	if src.Method != sources.MethodBrowser {
		return l.http.Fetch(ctx, rawURL, opts)
	}
	if l.browser == nil {
		return nil, fmt.Errorf("source %q: %w", src.Name, types.ErrNoSessions)
	}

	var resp *types.Response
	err := l.browser.Do(ctx, func(s *fetcher.BrowserSession) error {
		var ferr error
		resp, ferr = s.Fetch(ctx, rawURL, opts)
		return ferr
	})
	return resp, err
}

// Close releases the browser and the HTTP client.
func (l *PageLoader) Close() error {
	var err error
	if l.browser != nil {
		err = l.browser.Close()
	}
	if cerr := l.http.Close(); err == nil {
		err = cerr
	}
	return err
}
