package engine

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/IshaanNene/newsentiment/internal/fetcher"
	"github.com/IshaanNene/newsentiment/internal/observability"
	"github.com/IshaanNene/newsentiment/internal/parser"
	"github.com/IshaanNene/newsentiment/internal/sources"
)

var skippedSchemes = []string{"#", "javascript:", "mailto:", "tel:", "data:"}

// Discoverer turns listing pages and feeds into candidate article URLs.
type Discoverer struct {
	loader   Loader
	feeds    fetcher.Fetcher
	invalid  []string
	dedup    *Deduplicator
	useFeeds bool
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewDiscoverer creates a Discoverer. feeds may be nil, in which case feed
// URLs are ignored. invalid holds the blocklisted URL substrings.
func NewDiscoverer(loader Loader, feeds fetcher.Fetcher, invalid []string, useFeeds bool, metrics *observability.Metrics, logger *slog.Logger) *Discoverer {
	lowered := make([]string, 0, len(invalid))
	for _, p := range invalid {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}
	if metrics == nil {
		metrics = observability.NewMetrics(logger)
	}
	return &Discoverer{
		loader:   loader,
		feeds:    feeds,
		invalid:  lowered,
		dedup:    NewDeduplicator(1024),
		useFeeds: useFeeds,
		metrics:  metrics,
		logger:   logger.With("component", "discoverer"),
	}
}

// Reset forgets every URL seen so far. Call it between runs.
func (d *Discoverer) Reset() { d.dedup.Reset() }

// Seen returns how many distinct URLs have been accepted.
func (d *Discoverer) Seen() int { return d.dedup.Count() }

// Discover visits each listing page of src, then its feeds, and returns at
// most limit new article URLs in discovery order. A limit of 0 means no cap.
// Listings that fail to load are logged and skipped.
func (d *Discoverer) Discover(ctx context.Context, src *sources.Compiled, limit int) []string {
	logger := d.logger.With("source", src.Name)
	var out []string

	full := func() bool { return limit > 0 && len(out) >= limit }

	for _, listing := range src.ListingURLs {
		if full() || ctx.Err() != nil {
			break
		}

		resp, err := d.loader.Load(ctx, src, listing)
		if err != nil {
			d.metrics.ListingsFailed.Add(1)
			logger.Warn("listing page failed", "url", listing, "error", err)
			continue
		}
		doc, err := resp.Document()
		if err != nil {
			d.metrics.ListingsFailed.Add(1)
			logger.Warn("listing page unreadable", "url", listing, "error", err)
			continue
		}
		d.metrics.ListingsFetched.Add(1)

		pageURL := resp.FinalURL
		if pageURL == "" {
			pageURL = listing
		}
		found := d.DiscoverFromPage(parser.NewPage(doc), pageURL, src, remaining(limit, len(out)))
		logger.Debug("listing page scanned", "url", listing, "found", len(found))
		out = append(out, found...)
	}

	if d.useFeeds && d.feeds != nil {
		for _, feedURL := range src.FeedURLs {
			if full() || ctx.Err() != nil {
				break
			}
			found := d.discoverFeed(ctx, feedURL, src, remaining(limit, len(out)))
			logger.Debug("feed scanned", "url", feedURL, "found", len(found))
			out = append(out, found...)
		}
	}

	logger.Debug("discovery complete", "urls", len(out))
	return out
}

// DiscoverFromPage applies the source's link selectors to an already
// loaded listing page. The first selector that matches any element is the
// only one used.
func (d *Discoverer) DiscoverFromPage(page *parser.Page, pageURL string, src *sources.Compiled, limit int) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	for _, sel := range src.Links {
		nodes := page.Elements(sel)
		if len(nodes) == 0 {
			continue
		}

		var out []string
		for _, n := range nodes {
			if limit > 0 && len(out) >= limit {
				break
			}
			if u, ok := d.accept(parser.Href(n), base, src); ok {
				out = append(out, u)
			}
		}
		return out
	}
	return nil
}

func (d *Discoverer) discoverFeed(ctx context.Context, feedURL string, src *sources.Compiled, limit int) []string {
	resp, err := d.feeds.Fetch(ctx, feedURL, fetcher.Options{})
	if err != nil {
		d.logger.Warn("feed failed", "source", src.Name, "url", feedURL, "error", err)
		return nil
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		d.logger.Warn("feed unreadable", "source", src.Name, "url", feedURL, "error", err)
		return nil
	}
	d.metrics.FeedsFetched.Add(1)

	base, _ := url.Parse(feedURL)
	var out []string
	for _, item := range feed.Items {
		if limit > 0 && len(out) >= limit {
			break
		}
		if u, ok := d.accept(item.Link, base, src); ok {
			out = append(out, u)
		}
	}
	return out
}

// accept normalizes href against base and applies the blocklist and the
// seen-set.
func (d *Discoverer) accept(href string, base *url.URL, src *sources.Compiled) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, p := range skippedSchemes {
		if strings.HasPrefix(lower, p) {
			return "", false
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		d.metrics.LinksFiltered.Add(1)
		return "", false
	}
	abs := ref
	if base != nil {
		abs = base.ResolveReference(ref)
	}
	if abs.Scheme != "http" && abs.Scheme != "https" {
		d.metrics.LinksFiltered.Add(1)
		return "", false
	}
	abs.Fragment = ""
	abs.RawFragment = ""
	if src.StripQuery {
		abs.RawQuery = ""
		abs.ForceQuery = false
	}

	u := abs.String()
	if base != nil && CanonicalizeURL(u) == CanonicalizeURL(base.String()) {
		return "", false
	}

	lower = strings.ToLower(u)
	for _, p := range d.invalid {
		if strings.Contains(lower, p) {
			d.metrics.LinksFiltered.Add(1)
			return "", false
		}
	}

	if d.dedup.SeenOrMark(u) {
		d.metrics.LinksFiltered.Add(1)
		return "", false
	}
	d.metrics.LinksDiscovered.Add(1)
	return u, true
}

func remaining(limit, have int) int {
	if limit <= 0 {
		return 0
	}
	return limit - have
}
