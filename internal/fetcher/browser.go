package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/newsentiment/internal/config"
	"github.com/IshaanNene/newsentiment/internal/types"
)

const (
	scrollJS    = `() => window.scrollTo(0, document.body.scrollHeight / 3)`
	removeJS    = `(sels) => sels.forEach(s => document.querySelectorAll(s).forEach(e => e.remove()))`
	statusJS    = `() => { const n = performance.getEntriesByType('navigation')[0]; return (n && n.responseStatus) || 200 }`
	scrollPause = 300 * time.Millisecond
	blankPage   = "about:blank"
)

// BrowserSession is one browser tab owned by a single task at a time.
type BrowserSession struct {
	id      int
	page    *rod.Page
	timeout time.Duration
	settle  time.Duration
	logger  *slog.Logger
}

// Fetch navigates the session's tab to rawURL and returns the rendered DOM.
func (s *BrowserSession) Fetch(ctx context.Context, rawURL string, opts Options) (*types.Response, error) {
	start := time.Now()
	page := s.page.Context(ctx)

	if err := page.Timeout(s.timeout).Navigate(rawURL); err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: true}
	}
	if err := page.Timeout(s.timeout).WaitLoad(); err != nil {
		s.logger.Debug("page load wait timed out, continuing", "url", rawURL, "error", err)
	}

	if opts.Scroll {
		if _, err := page.Eval(scrollJS); err != nil {
			s.logger.Debug("scroll failed", "url", rawURL, "error", err)
		}
		time.Sleep(scrollPause)
	}
	if s.settle > 0 {
		if err := page.Timeout(s.timeout).WaitStable(s.settle); err != nil {
			s.logger.Debug("page stability timeout, continuing", "url", rawURL, "error", err)
		}
	}
	if len(opts.Overlays) > 0 {
		if _, err := page.Eval(removeJS, opts.Overlays); err != nil {
			s.logger.Debug("overlay removal failed", "url", rawURL, "error", err)
		}
	}

	status := 200
	if res, err := page.Eval(statusJS); err == nil && res.Value.Int() > 0 {
		status = res.Value.Int()
	}
	if status < 200 || status >= 300 {
		return nil, &types.FetchError{URL: rawURL, StatusCode: status, Err: fmt.Errorf("HTTP %d", status)}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: true}
	}

	finalURL := rawURL
	if info, err := page.Info(); err == nil && info != nil && info.URL != "" {
		finalURL = info.URL
	}

	duration := time.Since(start)
	s.logger.Debug("browser fetch complete",
		"session", s.id,
		"url", rawURL,
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return types.NewBrowserResponse(rawURL, status, []byte(html), finalURL, duration), nil
}

// reset frees the memory of the last page before the session is reused.
func (s *BrowserSession) reset() {
	_ = s.page.Navigate(blankPage)
}

// Close closes the tab.
func (s *BrowserSession) Close() error { return s.page.Close() }

// Type returns the fetcher type identifier.
func (s *BrowserSession) Type() string { return "browser" }

// BrowserPool owns one browser process and a fixed set of tabs, one per
// worker slot.
type BrowserPool struct {
	*Pool[*BrowserSession]
	browser *rod.Browser
	logger  *slog.Logger
}

// NewBrowserPool launches the browser and opens up to size sessions. It
// fails with types.ErrNoSessions if the browser cannot start or no tab can
// be opened.
func NewBrowserPool(cfg *config.Config, size int, logger *slog.Logger) (*BrowserPool, error) {
	logger = logger.With("component", "browser_pool")

	controlURL, err := launchBrowser(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: launch browser: %w", types.ErrNoSessions, err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: connect browser: %w", types.ErrNoSessions, err)
	}

	userAgents := cfg.Scraper.UserAgents
	create := func(i int) (*BrowserSession, error) {
		page, err := newPage(browser, cfg.Fetcher.Stealth)
		if err != nil {
			return nil, err
		}
		if len(userAgents) > 0 {
			ua := userAgents[i%len(userAgents)]
			if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
				logger.Warn("failed to set user agent", "slot", i, "error", err)
			}
		}
		return &BrowserSession{
			id:      i,
			page:    page,
			timeout: cfg.Scraper.RequestTimeout,
			settle:  cfg.Scraper.PageSettle,
			logger:  logger,
		}, nil
	}

	pool, err := NewPool(size, create, (*BrowserSession).Close, logger)
	if err != nil {
		_ = browser.Close()
		return nil, err
	}

	logger.Info("browser ready",
		"sessions", pool.Size(),
		"headless", cfg.Scraper.Headless,
		"stealth", cfg.Fetcher.Stealth,
	)

	return &BrowserPool{Pool: pool, browser: browser, logger: logger}, nil
}

// Release resets the session and returns it to the pool.
func (bp *BrowserPool) Release(s *BrowserSession) {
	s.reset()
	bp.Pool.Release(s)
}

// Do runs fn with a checked-out session, releasing it on every exit path.
func (bp *BrowserPool) Do(ctx context.Context, fn func(*BrowserSession) error) error {
	s, err := bp.Acquire(ctx)
	if err != nil {
		return err
	}
	defer bp.Release(s)
	return fn(s)
}

// Close shuts every session and the browser down.
func (bp *BrowserPool) Close() error {
	_ = bp.Pool.Close()
	return bp.browser.Close()
}

// launchBrowser starts a Chromium instance with appropriate flags.
func launchBrowser(cfg *config.Config) (string, error) {
	l := launcher.New().
		Headless(cfg.Scraper.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-extensions").
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("blink-settings", "imagesEnabled=false").
		Set("disable-blink-features", "AutomationControlled")

	if cfg.Fetcher.WindowSize != "" {
		l = l.Set("window-size", cfg.Fetcher.WindowSize)
	}
	if cfg.Fetcher.BrowserBin != "" {
		l = l.Bin(cfg.Fetcher.BrowserBin)
	}

	return l.Launch()
}

func newPage(browser *rod.Browser, useStealth bool) (*rod.Page, error) {
	if useStealth {
		page, err := stealth.Page(browser)
		if err != nil {
			return nil, fmt.Errorf("stealth page: %w", err)
		}
		return page, nil
	}
	return browser.Page(proto.TargetCreateTarget{URL: blankPage})
}
