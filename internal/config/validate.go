package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Scraper.MaxArticlesPerSource < 1 {
		return fmt.Errorf("scraper.max_articles_per_source must be >= 1, got %d", cfg.Scraper.MaxArticlesPerSource)
	}
	if cfg.Scraper.MaxWorkers < 1 {
		return fmt.Errorf("scraper.max_workers must be >= 1, got %d", cfg.Scraper.MaxWorkers)
	}
	if cfg.Scraper.MaxWorkers > 64 {
		return fmt.Errorf("scraper.max_workers must be <= 64, got %d", cfg.Scraper.MaxWorkers)
	}
	if cfg.Scraper.RequestTimeout <= 0 {
		return fmt.Errorf("scraper.request_timeout must be > 0")
	}
	if cfg.Scraper.PageSettle < 0 {
		return fmt.Errorf("scraper.page_settle must be >= 0")
	}
	switch cfg.Scraper.Method {
	case "", "http", "browser":
	default:
		return fmt.Errorf("scraper.method must be empty, 'http' or 'browser', got %q", cfg.Scraper.Method)
	}

	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if cfg.Extract.MinParagraphChars < 0 || cfg.Extract.MinBodyChars < 0 {
		return fmt.Errorf("extract minimum lengths must be >= 0")
	}

	if cfg.Sentiment.Backend != "vader" && cfg.Sentiment.Backend != "keywords" {
		return fmt.Errorf("sentiment.backend must be 'vader' or 'keywords', got %q", cfg.Sentiment.Backend)
	}
	if cfg.Sentiment.Threshold <= 0 || cfg.Sentiment.Threshold >= 1 {
		return fmt.Errorf("sentiment.threshold must be in (0, 1), got %v", cfg.Sentiment.Threshold)
	}

	if cfg.Categorizer.Strategy != "first_match" && cfg.Categorizer.Strategy != "most_hits" {
		return fmt.Errorf("categorizer.strategy must be 'first_match' or 'most_hits', got %q", cfg.Categorizer.Strategy)
	}

	validDrivers := map[string]bool{
		"sqlite": true, "postgres": true, "mongodb": true, "jsonl": true,
	}
	if !validDrivers[cfg.Storage.Driver] {
		return fmt.Errorf("storage.driver %q is not supported (valid: sqlite, postgres, mongodb, jsonl)", cfg.Storage.Driver)
	}
	if cfg.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn must not be empty")
	}

	if cfg.Report.Limit < 1 {
		return fmt.Errorf("report.limit must be >= 1, got %d", cfg.Report.Limit)
	}
	if cfg.Report.TrendDays < 1 {
		return fmt.Errorf("report.trend_days must be >= 1, got %d", cfg.Report.TrendDays)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}
	if cfg.API.Port < 1 || cfg.API.Port > 65535 {
		return fmt.Errorf("api.port must be 1-65535, got %d", cfg.API.Port)
	}

	return nil
}

// ValidateURL checks if a URL string is valid for fetching.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
