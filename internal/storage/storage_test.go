package storage

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/IshaanNene/newsentiment/internal/config"
	"github.com/IshaanNene/newsentiment/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	s, err := NewGormStore(DriverSQLite, filepath.Join(t.TempDir(), "articles.db"), testLogger)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return s
}

func article(url, source, title string) *types.Article {
	a := types.NewArticle(url, source, title, "Some body text for "+title)
	a.SentimentScore = 0.4
	a.SentimentLabel = types.Positive
	a.Category = "Business"
	return a
}

func TestInitIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("second init: %v", err)
	}
}

func TestUpsertSecondWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := article("https://example.com/news/1", "bbc", "First title")
	if _, err := s.SaveArticles(ctx, []*types.Article{first}); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second := article("https://example.com/news/1", "bbc", "Second title")
	second.Body = "A much longer replacement body with more words in it"
	second.SentimentLabel = types.Negative
	second.SentimentScore = -0.3
	res, err := s.SaveArticles(ctx, []*types.Article{second})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if res.Saved != 1 || res.Skipped != 0 {
		t.Errorf("unexpected result %+v", res)
	}

	rows, err := s.Articles(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	got := rows[0]
	if got.Title != "Second title" {
		t.Errorf("expected second title, got %q", got.Title)
	}
	if got.SentimentLabel != types.Negative {
		t.Errorf("expected negative label, got %s", got.SentimentLabel)
	}
	if got.WordCount != 10 || got.ContentLength != len(second.Body) {
		t.Errorf("lengths not recomputed: %d words, %d chars", got.WordCount, got.ContentLength)
	}
}

func TestSameBurstDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := article("https://example.com/news/1", "bbc", "One")
	b := article("https://example.com/news/1", "bbc", "Two")
	if _, err := s.SaveArticles(ctx, []*types.Article{a, b}); err != nil {
		t.Fatalf("save: %v", err)
	}
	rows, _ := s.Articles(ctx, Query{})
	if len(rows) != 1 || rows[0].Title != "Two" {
		t.Fatalf("expected one row titled Two, got %+v", rows)
	}
}

func TestMalformedSkipped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bad := article("", "bbc", "No URL")
	untitled := article("https://example.com/news/2", "bbc", "")
	good := article("https://example.com/news/3", "bbc", "Fine")

	res, err := s.SaveArticles(ctx, []*types.Article{bad, nil, untitled, good})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.Saved != 1 || res.Skipped != 3 {
		t.Errorf("expected 1 saved and 3 skipped, got %+v", res)
	}
}

func TestQueryFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, src := range []string{"bbc", "cnn", "bbc", "ap"} {
		at := base.Add(time.Duration(i) * 24 * time.Hour)
		s.now = func() time.Time { return at }
		a := article("https://example.com/news/"+string(rune('a'+i)), src, "Story "+string(rune('A'+i)))
		if i == 3 {
			a.SentimentLabel = types.Neutral
		}
		if _, err := s.SaveArticles(ctx, []*types.Article{a}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	all, _ := s.Articles(ctx, Query{})
	if len(all) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(all))
	}
	if all[0].Title != "Story D" || all[3].Title != "Story A" {
		t.Errorf("expected newest first, got %s ... %s", all[0].Title, all[3].Title)
	}

	bbc, _ := s.Articles(ctx, Query{Source: "bbc"})
	if len(bbc) != 2 {
		t.Errorf("expected 2 bbc rows, got %d", len(bbc))
	}

	limited, _ := s.Articles(ctx, Query{Limit: 2})
	if len(limited) != 2 || limited[0].Title != "Story D" {
		t.Errorf("unexpected limited result %d", len(limited))
	}

	window, _ := s.Articles(ctx, Query{Since: base.Add(24 * time.Hour), Until: base.Add(48 * time.Hour)})
	if len(window) != 2 {
		t.Errorf("expected 2 rows in window, got %d", len(window))
	}

	neutral, _ := s.Articles(ctx, Query{Label: types.Neutral})
	if len(neutral) != 1 || neutral[0].Source != "ap" {
		t.Errorf("expected the ap row, got %+v", neutral)
	}
}

func TestJSONLStoreUpsert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "articles.jsonl")
	store, err := Open(config.StorageConfig{Driver: DriverJSONL, DSN: path}, testLogger)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, title := range []string{"v1", "v2"} {
		if _, err := store.SaveArticles(ctx, []*types.Article{article("https://example.com/news/1", "bbc", title)}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	res, err := store.SaveArticles(ctx, []*types.Article{article("https://example.com/news/2", "cnn", "other"), article("", "cnn", "bad")})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.Saved != 1 || res.Skipped != 1 {
		t.Errorf("unexpected result %+v", res)
	}

	rows, err := store.Articles(ctx, Query{Source: "bbc"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "v2" || rows[0].ID != 1 {
		t.Errorf("expected one bbc row titled v2 with id 1, got %+v", rows)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	defer f.Close()
	lines := 0
	for sc := bufio.NewScanner(f); sc.Scan(); {
		lines++
	}
	if lines != 2 {
		t.Errorf("expected 2 lines on disk, got %d", lines)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(config.StorageConfig{Driver: "redis", DSN: "x"}, testLogger); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("2026-03-08", false)
	if err != nil || !got.Equal(time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("lower = %v, %v", got, err)
	}
	got, err = ParseTime("2026-03-08", true)
	if err != nil || got.Day() != 8 || got.Hour() != 23 {
		t.Errorf("upper = %v, %v", got, err)
	}
	got, err = ParseTime("2026-03-08T10:30:00Z", true)
	if err != nil || got.Hour() != 10 {
		t.Errorf("rfc3339 = %v, %v", got, err)
	}
	if _, err := ParseTime("yesterday", false); err == nil {
		t.Error("expected error")
	}
}
