package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/IshaanNene/newsentiment/internal/config"
	"github.com/IshaanNene/newsentiment/internal/observability"
	"github.com/IshaanNene/newsentiment/internal/sources"
	"github.com/IshaanNene/newsentiment/internal/storage"
	"github.com/IshaanNene/newsentiment/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func seeded(t *testing.T) *storage.JSONLStore {
	t.Helper()
	store, err := storage.NewJSONLStore(filepath.Join(t.TempDir(), "articles.jsonl"), testLogger)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}

	mk := func(url, source, category string, score float64, label types.SentimentLabel) *types.Article {
		a := types.NewArticle(url, source, "Title of "+url, "Markets moved today as traders watched earnings.")
		a.Category = category
		a.SentimentScore = score
		a.SentimentLabel = label
		return a
	}
	_, err = store.SaveArticles(context.Background(), []*types.Article{
		mk("https://www.bbc.com/news/a", "bbc", "Business", 0.6, types.Positive),
		mk("https://www.bbc.com/news/b", "bbc", "Technology", 0.3, types.Positive),
		mk("https://apnews.com/article/c", "ap", "World", -0.4, types.Negative),
		mk("https://edition.cnn.com/sport/d", "cnn", "Sports", 0.0, types.Neutral),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func newTestServer(t *testing.T, store Reader) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	return NewServer(cfg, store, Options{
		Sources: sources.Default(),
		Metrics: observability.NewMetrics(testLogger),
		Version: "test",
	}, testLogger)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, seeded(t))
	rec := get(t, s, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "test" || body["store"] != "jsonl" {
		t.Errorf("body = %v", body)
	}
}

func TestArticlesFilters(t *testing.T) {
	s := newTestServer(t, seeded(t))

	tests := []struct {
		target string
		want   int
	}{
		{"/api/articles", 4},
		{"/api/articles?source=bbc", 2},
		{"/api/articles?label=negative", 1},
		{"/api/articles?limit=3", 3},
		{"/api/articles?until=2000-01-01", 0},
	}
	for _, tt := range tests {
		rec := get(t, s, tt.target)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", tt.target, rec.Code)
			continue
		}
		var body struct {
			Count    int              `json:"count"`
			Articles []*types.Article `json:"articles"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode: %v", tt.target, err)
		}
		if body.Count != tt.want || len(body.Articles) != tt.want {
			t.Errorf("%s: count = %d, want %d", tt.target, body.Count, tt.want)
		}
	}
}

func TestArticlesBadParams(t *testing.T) {
	s := newTestServer(t, seeded(t))
	for _, target := range []string{
		"/api/articles?limit=x",
		"/api/articles?label=angry",
		"/api/articles?since=soon",
		"/api/trends?days=0",
	} {
		if rec := get(t, s, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestTrendsAndSummary(t *testing.T) {
	s := newTestServer(t, seeded(t))

	rec := get(t, s, "/api/trends?days=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("trends status = %d", rec.Code)
	}
	var trends struct {
		Total      int `json:"total_articles"`
		WindowDays int `json:"window_days"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &trends); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if trends.Total != 4 || trends.WindowDays != 3 {
		t.Errorf("trends = %+v", trends)
	}

	rec = get(t, s, "/api/summary")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Total Articles: 4") {
		t.Errorf("summary = %d %q", rec.Code, rec.Body.String())
	}
}

func TestMarket(t *testing.T) {
	s := newTestServer(t, seeded(t))
	rec := get(t, s, "/api/market")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Articles       int    `json:"articles"`
		Classification string `json:"classification"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Articles != 3 || body.Classification != "Positive" {
		t.Errorf("market = %+v", body)
	}

	if rec := get(t, s, "/api/market?source=cnn"); rec.Code != http.StatusNotFound {
		t.Errorf("sports only: status = %d, want 404", rec.Code)
	}
}

func TestEmptyStoreReports404(t *testing.T) {
	store, err := storage.NewJSONLStore(filepath.Join(t.TempDir(), "empty.jsonl"), testLogger)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	s := newTestServer(t, store)
	if rec := get(t, s, "/api/trends"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	rec := get(t, s, "/api/articles")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"articles":[]`) {
		t.Errorf("articles = %d %s", rec.Code, rec.Body.String())
	}
}

type brokenStore struct{}

func (brokenStore) Articles(context.Context, storage.Query) ([]*types.Article, error) {
	return nil, errors.New("disk on fire")
}
func (brokenStore) Name() string { return "broken" }

func TestStoreErrorIs500(t *testing.T) {
	s := newTestServer(t, brokenStore{})
	rec := get(t, s, "/api/articles")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "disk on fire") {
		t.Error("internal error leaked to client")
	}
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t, seeded(t))
	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "newsentiment_articles_saved_total") {
		t.Errorf("metrics = %d %q", rec.Code, rec.Body.String())
	}
}

func TestCORSHeader(t *testing.T) {
	s := newTestServer(t, seeded(t))
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestOverviewPage(t *testing.T) {
	s := newTestServer(t, seeded(t))
	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "/api/trends") {
		t.Error("overview does not read trends")
	}
}
