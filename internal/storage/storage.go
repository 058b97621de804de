// Package storage persists articles. Every backend upserts on URL, so a
// re-scrape fully replaces the earlier record and keeps no history.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/newsentiment/internal/config"
	"github.com/IshaanNene/newsentiment/internal/types"
)

// SaveResult counts the outcome of one write burst.
type SaveResult struct {
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
}

// Query selects stored articles. Zero values mean "no filter"; Since and
// Until apply to the scrape time.
type Query struct {
	Limit  int
	Source string
	Label  types.SentimentLabel
	Since  time.Time
	Until  time.Time
}

// Store is the interface for all article backends.
type Store interface {
	// Init creates the article table and its indexes if they are missing.
	Init(ctx context.Context) error

	// SaveArticles upserts a burst of articles keyed on URL. Malformed
	// records are skipped and counted, never fatal to the burst.
	SaveArticles(ctx context.Context, articles []*types.Article) (SaveResult, error)

	// Articles returns matching rows, newest scrape first.
	Articles(ctx context.Context, q Query) ([]*types.Article, error)

	// Close releases any resources held between bursts.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// Open creates the backend selected by cfg.Driver.
func Open(cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Driver {
	case DriverSQLite, DriverPostgres:
		store, err = NewGormStore(cfg.Driver, cfg.DSN, logger)
	case DriverMongo:
		store, err = NewMongoStore(cfg.DSN, cfg.MongoDatabase, cfg.MongoCollection, logger)
	case DriverJSONL:
		store, err = NewJSONLStore(cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// prepare validates a burst and stamps write-time fields. It returns the
// records that may be written and the number skipped.
func prepare(articles []*types.Article, now time.Time, logger *slog.Logger) ([]*types.Article, int) {
	valid := make([]*types.Article, 0, len(articles))
	skipped := 0
	for _, a := range articles {
		if err := a.Validate(); err != nil {
			skipped++
			url := ""
			if a != nil {
				url = a.URL
			}
			logger.Warn("skipping malformed article", "url", url, "error", err)
			continue
		}
		a.Recompute()
		a.ScrapedAt = now
		valid = append(valid, a)
	}
	return valid, skipped
}

// ParseTime reads a query bound given as RFC 3339 or as a bare date.
// A bare date used as an upper bound covers the whole day.
func ParseTime(s string, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339 or YYYY-MM-DD", s)
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// matches reports whether a passes the filters of q other than Limit.
func (q Query) matches(a *types.Article) bool {
	switch {
	case q.Source != "" && a.Source != q.Source:
		return false
	case q.Label != "" && a.SentimentLabel != q.Label:
		return false
	case !q.Since.IsZero() && a.ScrapedAt.Before(q.Since):
		return false
	case !q.Until.IsZero() && a.ScrapedAt.After(q.Until):
		return false
	}
	return true
}
