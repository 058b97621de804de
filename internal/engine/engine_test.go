package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IshaanNene/newsentiment/internal/categorize"
	"github.com/IshaanNene/newsentiment/internal/config"
	"github.com/IshaanNene/newsentiment/internal/fetcher"
	"github.com/IshaanNene/newsentiment/internal/parser"
	"github.com/IshaanNene/newsentiment/internal/sentiment"
	"github.com/IshaanNene/newsentiment/internal/sources"
	"github.com/IshaanNene/newsentiment/internal/storage"
	"github.com/IshaanNene/newsentiment/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const listingPage = `<html><body>
<a href="/news/world-1">One</a>
<a href="/news/business-2">Two</a>
<a href="/news/video/clip-1">Clip</a>
<a href="https://other.example/news/tech-3#comments">Three</a>
<a href="/news/video/clip-2">Clip two</a>
</body></html>`

const duplicatePage = `<html><body>
<a href="/news/a">A</a>
<a href="/news/a#top">A again</a>
<a href="/news/b">B</a>
<a href="/news/b/">B slash</a>
<a href="/news/a">A thrice</a>
<a href="/sport/c">not news</a>
</body></html>`

func testSource(t *testing.T, listing string, feeds ...string) *sources.Compiled {
	t.Helper()
	src := sources.Source{
		Name:     "fixture",
		Method:   sources.MethodHTTP,
		FeedURLs: feeds,
		Selectors: sources.Selectors{
			Links:  []string{`a.missing`, `a[href*="/news/"]`},
			Title:  []string{"h1.headline", "h1"},
			Body:   []string{"div.story p", "article p"},
			Date:   []string{"time"},
			Author: []string{".byline"},
		},
	}
	if listing != "" {
		src.ListingURLs = []string{listing}
	}
	reg, err := sources.New(src)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	c, err := reg.Get("fixture")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	return c
}

func mustPage(t *testing.T, markup string) *parser.Page {
	t.Helper()
	p, err := parser.ParseHTML(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return p
}

func newDiscoverer(loader Loader, feeds fetcher.Fetcher) *Discoverer {
	return NewDiscoverer(loader, feeds, sources.DefaultInvalidPatterns(), true, nil, testLogger)
}

// --- Discovery Tests ---

func TestDiscoverFiltersInvalidPatterns(t *testing.T) {
	d := newDiscoverer(nil, nil)
	src := testSource(t, "https://example.com/")

	got := d.DiscoverFromPage(mustPage(t, listingPage), "https://example.com/", src, 0)
	want := []string{
		"https://example.com/news/world-1",
		"https://example.com/news/business-2",
		"https://other.example/news/tech-3",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d URLs, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("url %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestDiscoverNoRepeats(t *testing.T) {
	d := newDiscoverer(nil, nil)
	src := testSource(t, "https://example.com/")

	first := d.DiscoverFromPage(mustPage(t, duplicatePage), "https://example.com/", src, 0)
	if len(first) != 2 {
		t.Fatalf("expected 2 unique URLs, got %v", first)
	}

	// Same run: everything is already seen.
	again := d.DiscoverFromPage(mustPage(t, duplicatePage), "https://example.com/", src, 0)
	if len(again) != 0 {
		t.Errorf("expected no new URLs in the same run, got %v", again)
	}

	// New run: same unique result.
	d.Reset()
	second := d.DiscoverFromPage(mustPage(t, duplicatePage), "https://example.com/", src, 0)
	seen := make(map[string]bool)
	for _, u := range second {
		if seen[u] {
			t.Errorf("repeated URL %s", u)
		}
		seen[u] = true
	}
	if len(second) != 2 {
		t.Errorf("expected 2 URLs after reset, got %v", second)
	}
}

func TestDiscoverLimit(t *testing.T) {
	d := newDiscoverer(nil, nil)
	src := testSource(t, "https://example.com/")

	got := d.DiscoverFromPage(mustPage(t, listingPage), "https://example.com/", src, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 URLs, got %v", got)
	}
	// URLs past the cap are not marked seen.
	if d.Seen() != 2 {
		t.Errorf("expected 2 seen URLs, got %d", d.Seen())
	}
}

func TestDiscoverStripQuery(t *testing.T) {
	d := newDiscoverer(nil, nil)
	src := testSource(t, "https://example.com/")
	src.StripQuery = true

	got := d.DiscoverFromPage(mustPage(t, `<a href="/news/x?utm_source=rss">x</a><a href="/news/x?ref=home">x</a>`), "https://example.com/", src, 0)
	if len(got) != 1 || got[0] != "https://example.com/news/x" {
		t.Errorf("expected one query-stripped URL, got %v", got)
	}
}

func TestDiscoverFirstMatchingSelectorOnly(t *testing.T) {
	d := newDiscoverer(nil, nil)
	src := testSource(t, "https://example.com/")

	page := mustPage(t, `<a class="missing" href="/news/only">only</a><a href="/news/other">other</a>`)
	got := d.DiscoverFromPage(page, "https://example.com/", src, 0)
	if len(got) != 1 || !strings.HasSuffix(got[0], "/news/only") {
		t.Errorf("expected only the first selector's links, got %v", got)
	}
}

func TestDiscoverSkipsFailedListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, listingPage)
	}))
	defer srv.Close()

	loader := NewHTTPLoader(newHTTPFetcher(t), testLogger)
	d := newDiscoverer(loader, loader.HTTP())

	src := testSource(t, srv.URL+"/broken")
	src.ListingURLs = append(src.ListingURLs, srv.URL+"/")

	got := d.Discover(context.Background(), src, 0)
	if len(got) != 3 {
		t.Errorf("expected 3 URLs from the working listing, got %v", got)
	}
	if d.metrics.ListingsFailed.Load() != 1 {
		t.Errorf("expected 1 failed listing, got %d", d.metrics.ListingsFailed.Load())
	}
}

func TestDiscoverFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Fixture</title>
<item><title>A</title><link>%[1]s/news/item-a</link></item>
<item><title>Clip</title><link>%[1]s/news/video/item-clip</link></item>
<item><title>B</title><link>%[1]s/news/item-b</link></item>
</channel></rss>`, "http://"+r.Host)
	}))
	defer srv.Close()

	loader := NewHTTPLoader(newHTTPFetcher(t), testLogger)
	d := newDiscoverer(loader, loader.HTTP())
	src := testSource(t, "", srv.URL+"/rss.xml")

	got := d.Discover(context.Background(), src, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 feed URLs, got %v", got)
	}
	if !strings.HasSuffix(got[0], "/news/item-a") || !strings.HasSuffix(got[1], "/news/item-b") {
		t.Errorf("unexpected feed URLs %v", got)
	}
}

// --- Extraction Tests ---

const articlePage = `<html><head>
<script type="application/ld+json">{"@type":"NewsArticle","author":{"@type":"Person","name":"Meta Writer"}}</script>
</head><body>
<div class="cookie-banner">We use cookies</div>
<h1>Markets surged today</h1>
<time datetime="2024-03-05T09:00:00Z">5 March</time>
<article>
<p>Record profits and strong growth lifted shares.</p>
<p>Analysts were optimistic.</p>
</article>
</body></html>`

func TestExtractPage(t *testing.T) {
	x := NewExtractor(config.DefaultConfig().Extract, testLogger)
	src := testSource(t, "https://example.com/")

	a := x.ExtractPage(mustPage(t, articlePage), "https://example.com/news/1", src)
	if a == nil {
		t.Fatal("expected an article")
	}
	if a.Title != "Markets surged today" {
		t.Errorf("unexpected title %q", a.Title)
	}
	if a.Body != "Record profits and strong growth lifted shares.\n\nAnalysts were optimistic." {
		t.Errorf("unexpected body %q", a.Body)
	}
	if a.PublishedAt == nil || !a.PublishedAt.Equal(time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %v", a.PublishedAt)
	}
	if a.Author != "Meta Writer" {
		t.Errorf("expected metadata author fallback, got %q", a.Author)
	}
	if a.Source != "fixture" || a.WordCount != 10 {
		t.Errorf("unexpected source or word count: %s %d", a.Source, a.WordCount)
	}
}

func TestExtractPageMiss(t *testing.T) {
	x := NewExtractor(config.DefaultConfig().Extract, testLogger)
	src := testSource(t, "https://example.com/")

	for name, markup := range map[string]string{
		"no title": `<article><p>Body only.</p></article>`,
		"no body":  `<h1>Title only</h1>`,
		"blank":    `<h1>   </h1><article><p> </p></article>`,
	} {
		if a := x.ExtractPage(mustPage(t, markup), "https://example.com/news/1", src); a != nil {
			t.Errorf("%s: expected a miss, got %+v", name, a)
		}
	}
}

func TestExtractPageTruncates(t *testing.T) {
	cfg := config.DefaultConfig().Extract
	cfg.MaxTitleChars = 10
	x := NewExtractor(cfg, testLogger)
	src := testSource(t, "https://example.com/")

	a := x.ExtractPage(mustPage(t, `<h1>A very long headline indeed</h1><article><p>Body.</p></article>`), "https://example.com/news/1", src)
	if a == nil || a.Title != "A very lon" {
		t.Errorf("expected truncated title, got %+v", a)
	}
}

// --- Engine Tests ---

func newHTTPFetcher(t *testing.T) *fetcher.HTTPFetcher {
	t.Helper()
	f, err := fetcher.NewHTTPFetcher(config.DefaultConfig(), testLogger)
	if err != nil {
		t.Fatalf("http fetcher: %v", err)
	}
	return f
}

func newsServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<a href="/news/good">Good</a>
<a href="/news/bad">Bad</a>
<a href="/news/empty">Empty</a>
<a href="/news/gone">Gone</a>
<a href="/news/video/clip">Clip</a>
</body></html>`)
	})
	mux.HandleFunc("/news/good", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage)
	})
	mux.HandleFunc("/news/bad", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<h1>Disaster and crisis loom as conflict escalates</h1>
<div class="story"><p>Officials warned of a collapse and a wider threat.</p></div>`)
	})
	mux.HandleFunc("/news/empty", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>Nothing here.</p></body></html>`)
	})
	mux.HandleFunc("/news/gone", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	return httptest.NewServer(mux)
}

func TestEngineRun(t *testing.T) {
	srv := newsServer()
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Scraper.MaxWorkers = 3
	cfg.Scraper.RequestTimeout = 5 * time.Second

	reg, err := sources.New(sources.Source{
		Name:        "fixture",
		Method:      sources.MethodHTTP,
		ListingURLs: []string{srv.URL + "/"},
		Selectors: sources.Selectors{
			Links: []string{`a[href*="/news/"]`},
			Title: []string{"h1"},
			Body:  []string{"article p", "div.story p"},
			Date:  []string{"time"},
		},
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	store, err := storage.NewGormStore(storage.DriverSQLite, filepath.Join(t.TempDir(), "run.db"), testLogger)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	loader := NewHTTPLoader(newHTTPFetcher(t), testLogger)
	keywords := sentiment.NewKeywordScorer(sentiment.DefaultKeywords())
	e, err := New(cfg, Deps{
		Registry:    reg,
		Loader:      loader,
		Feeds:       loader.HTTP(),
		Scorer:      sentiment.NewScorer(nil, keywords, sentiment.DefaultThreshold, testLogger),
		Categorizer: categorize.Default(),
		Store:       store,
	}, testLogger)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	summary, err := e.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	ss, ok := summary.Source("fixture")
	if !ok {
		t.Fatal("missing source summary")
	}
	if ss.Discovered != 4 || ss.Extracted != 2 || ss.Misses != 1 || ss.Failures != 1 || ss.Saved != 2 {
		t.Errorf("unexpected summary %+v", ss)
	}
	if summary.Total.Saved != 2 || summary.RunID == "" {
		t.Errorf("unexpected totals %+v", summary.Total)
	}
	if e.State() != StateIdle {
		t.Errorf("expected idle after run, got %s", e.State())
	}

	rows, err := store.Articles(ctx, storage.Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	labels := make(map[string]types.SentimentLabel)
	for _, r := range rows {
		labels[r.URL[len(srv.URL):]] = r.SentimentLabel
	}
	if labels["/news/good"] != types.Positive {
		t.Errorf("expected good article positive, got %q", labels["/news/good"])
	}
	if labels["/news/bad"] != types.Negative {
		t.Errorf("expected bad article negative, got %q", labels["/news/bad"])
	}

	var sb strings.Builder
	summary.Print(&sb)
	if !strings.Contains(sb.String(), "fixture") || !strings.Contains(sb.String(), "Total time") {
		t.Errorf("summary output missing fields:\n%s", sb.String())
	}
}

func TestEngineRequiresDeps(t *testing.T) {
	if _, err := New(config.DefaultConfig(), Deps{}, testLogger); err == nil {
		t.Error("expected error without a registry")
	}
}

func TestLoaderBrowserSourceWithoutPool(t *testing.T) {
	loader := NewHTTPLoader(newHTTPFetcher(t), testLogger)
	src := testSource(t, "https://example.com/")
	src.Method = sources.MethodBrowser

	_, err := loader.Load(context.Background(), src, "https://example.com/news/1")
	if err == nil || !strings.Contains(err.Error(), types.ErrNoSessions.Error()) {
		t.Errorf("expected ErrNoSessions, got %v", err)
	}
}

// --- Dedup Tests ---

func TestDeduplicator(t *testing.T) {
	d := NewDeduplicator(1000)

	if d.SeenOrMark("https://example.com") {
		t.Error("should not be seen before marking")
	}
	if !d.SeenOrMark("https://example.com") {
		t.Error("should be seen after marking")
	}
	if d.Count() != 1 {
		t.Errorf("Count = %d, want 1", d.Count())
	}

	d.Reset()
	if d.Count() != 0 || d.SeenOrMark("https://example.com") {
		t.Error("Reset should forget seen URLs")
	}
}

func TestDeduplicatorURLVariants(t *testing.T) {
	d := NewDeduplicator(1000)

	d.SeenOrMark("https://Example.COM/Path?b=2&a=1")

	// Hostname case
	if !d.SeenOrMark("https://example.com/Path?b=2&a=1") {
		t.Error("hostname should be case-insensitive")
	}

	// Query param order
	if !d.SeenOrMark("https://example.com/Path?a=1&b=2") {
		t.Error("query params should be order-insensitive")
	}
	if d.Count() != 1 {
		t.Errorf("variants should share one key, Count = %d", d.Count())
	}
}

func TestSeenOrMark(t *testing.T) {
	d := NewDeduplicator(10)
	if d.SeenOrMark("https://example.com/a") {
		t.Error("first call should report unseen")
	}
	if !d.SeenOrMark("https://example.com/a/") {
		t.Error("trailing slash variant should be seen")
	}
}

// --- Stats Tests ---

func TestStatsSnapshot(t *testing.T) {
	s := &Stats{StartTime: time.Now()}
	s.PagesFetched.Add(42)
	s.FetchFailures.Add(2)

	snap := s.Snapshot()
	if snap["pages_fetched"].(int64) != 42 {
		t.Errorf("expected 42 pages_fetched, got %v", snap["pages_fetched"])
	}
	if snap["fetch_failures"].(int64) != 2 {
		t.Errorf("expected 2 fetch_failures, got %v", snap["fetch_failures"])
	}
}

// --- Benchmarks ---

func BenchmarkDeduplicator(b *testing.B) {
	d := NewDeduplicator(1_000_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		url := "https://example.com/page/" + string(rune(i%26+'a'))
		d.SeenOrMark(url)
	}
}
