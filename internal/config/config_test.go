package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Scraper.MaxArticlesPerSource != 60 || cfg.Scraper.MaxWorkers != 6 || !cfg.Scraper.Headless {
		t.Errorf("unexpected scraper defaults %+v", cfg.Scraper)
	}
	if len(cfg.Scraper.InvalidPatterns) == 0 {
		t.Error("expected invalid patterns by default")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errSub string
	}{
		{"workers", func(c *Config) { c.Scraper.MaxWorkers = 0 }, "max_workers"},
		{"articles", func(c *Config) { c.Scraper.MaxArticlesPerSource = 0 }, "max_articles_per_source"},
		{"method", func(c *Config) { c.Scraper.Method = "ftp" }, "scraper.method"},
		{"backend", func(c *Config) { c.Sentiment.Backend = "bert" }, "sentiment.backend"},
		{"threshold", func(c *Config) { c.Sentiment.Threshold = 0 }, "sentiment.threshold"},
		{"strategy", func(c *Config) { c.Categorizer.Strategy = "random" }, "categorizer.strategy"},
		{"driver", func(c *Config) { c.Storage.Driver = "redis" }, "storage.driver"},
		{"dsn", func(c *Config) { c.Storage.DSN = "" }, "storage.dsn"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"trend days", func(c *Config) { c.Report.TrendDays = 0 }, "trend_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Fatalf("expected error containing %q, got %v", tt.errSub, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newsentiment.yaml")
	content := `
scraper:
  max_articles_per_source: 10
  max_workers: 3
  headless: false
  request_timeout: 5s
  sources: [bbc, ap]
storage:
  driver: sqlite
  dsn: test.db
sentiment:
  backend: keywords
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scraper.MaxArticlesPerSource != 10 || cfg.Scraper.MaxWorkers != 3 || cfg.Scraper.Headless {
		t.Errorf("scraper section not applied: %+v", cfg.Scraper)
	}
	if cfg.Scraper.RequestTimeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.Scraper.RequestTimeout)
	}
	if len(cfg.Scraper.Sources) != 2 || cfg.Scraper.Sources[1] != "ap" {
		t.Errorf("unexpected sources %v", cfg.Scraper.Sources)
	}
	if cfg.Sentiment.Backend != "keywords" || cfg.Storage.DSN != "test.db" {
		t.Errorf("unexpected sections %+v %+v", cfg.Sentiment, cfg.Storage)
	}
	// untouched sections keep defaults
	if cfg.Report.TrendDays != 7 {
		t.Errorf("expected default trend days, got %d", cfg.Report.TrendDays)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NEWSENTIMENT_SCRAPER_MAX_WORKERS", "2")
	t.Setenv("NEWSENTIMENT_STORAGE_DSN", "env.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for explicit missing config file")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "c.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scraper.MaxWorkers != 2 {
		t.Errorf("expected env override of workers, got %d", cfg.Scraper.MaxWorkers)
	}
	if cfg.Storage.DSN != "env.db" {
		t.Errorf("expected env override of dsn, got %q", cfg.Storage.DSN)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected file value, got %q", cfg.Logging.Level)
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("https://www.bbc.com/news"); err != nil {
		t.Errorf("expected valid: %v", err)
	}
	for _, bad := range []string{"ftp://x.com", "https://", "::"} {
		if err := ValidateURL(bad); err == nil {
			t.Errorf("expected %q to be invalid", bad)
		}
	}
}
