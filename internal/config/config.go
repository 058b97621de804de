package config

import (
	"time"

	"github.com/IshaanNene/newsentiment/internal/sources"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for newsentiment.
type Config struct {
	Scraper     ScraperConfig     `mapstructure:"scraper"     yaml:"scraper"`
	Fetcher     FetcherConfig     `mapstructure:"fetcher"     yaml:"fetcher"`
	Extract     ExtractConfig     `mapstructure:"extract"     yaml:"extract"`
	Sentiment   SentimentConfig   `mapstructure:"sentiment"   yaml:"sentiment"`
	Categorizer CategorizerConfig `mapstructure:"categorizer" yaml:"categorizer"`
	Storage     StorageConfig     `mapstructure:"storage"     yaml:"storage"`
	Report      ReportConfig      `mapstructure:"report"      yaml:"report"`
	Logging     LoggingConfig     `mapstructure:"logging"     yaml:"logging"`
	Metrics     MetricsConfig     `mapstructure:"metrics"     yaml:"metrics"`
	API         APIConfig         `mapstructure:"api"         yaml:"api"`
}

// ScraperConfig controls discovery and the worker pool.
type ScraperConfig struct {
	MaxArticlesPerSource int           `mapstructure:"max_articles_per_source" yaml:"max_articles_per_source"`
	Headless             bool          `mapstructure:"headless"                yaml:"headless"`
	MaxWorkers           int           `mapstructure:"max_workers"             yaml:"max_workers"`
	RequestTimeout       time.Duration `mapstructure:"request_timeout"         yaml:"request_timeout"`
	PageSettle           time.Duration `mapstructure:"page_settle"             yaml:"page_settle"`
	Sources              []string      `mapstructure:"sources"                 yaml:"sources"`
	SourcesFile          string        `mapstructure:"sources_file"            yaml:"sources_file"`
	Method               string        `mapstructure:"method"                  yaml:"method"`
	InvalidPatterns      []string      `mapstructure:"invalid_patterns"        yaml:"invalid_patterns"`
	UseFeeds             bool          `mapstructure:"use_feeds"               yaml:"use_feeds"`
	UserAgents           []string      `mapstructure:"user_agents"             yaml:"user_agents"`
}

// FetcherConfig controls the HTTP client and browser.
type FetcherConfig struct {
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	BrowserBin      string        `mapstructure:"browser_bin"       yaml:"browser_bin"`
	Stealth         bool          `mapstructure:"stealth"           yaml:"stealth"`
	WindowSize      string        `mapstructure:"window_size"       yaml:"window_size"`
}

// ExtractConfig controls field extraction.
type ExtractConfig struct {
	MinParagraphChars int  `mapstructure:"min_paragraph_chars" yaml:"min_paragraph_chars"`
	MinBodyChars      int  `mapstructure:"min_body_chars"      yaml:"min_body_chars"`
	MaxTitleChars     int  `mapstructure:"max_title_chars"     yaml:"max_title_chars"`
	MaxAuthorChars    int  `mapstructure:"max_author_chars"    yaml:"max_author_chars"`
	UseMetadata       bool `mapstructure:"use_metadata"        yaml:"use_metadata"`
}

// SentimentConfig selects the scoring backend.
type SentimentConfig struct {
	Backend   string  `mapstructure:"backend"   yaml:"backend"`
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
}

// CategorizerConfig selects how categories are chosen.
type CategorizerConfig struct {
	Strategy string `mapstructure:"strategy" yaml:"strategy"`
}

// StorageConfig controls the article store.
type StorageConfig struct {
	Driver          string `mapstructure:"driver"           yaml:"driver"`
	DSN             string `mapstructure:"dsn"              yaml:"dsn"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// ReportConfig controls report, chart and export output.
type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	ExportDir string `mapstructure:"export_dir" yaml:"export_dir"`
	Limit     int    `mapstructure:"limit"      yaml:"limit"`
	TrendDays int    `mapstructure:"trend_days" yaml:"trend_days"`
	MaxWords  int    `mapstructure:"max_words"  yaml:"max_words"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level      string `mapstructure:"level"        yaml:"level"`
	Format     string `mapstructure:"format"       yaml:"format"`
	File       string `mapstructure:"file"         yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"  yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"  yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// APIConfig controls the read-only HTTP API.
type APIConfig struct {
	Port         int      `mapstructure:"port"          yaml:"port"`
	AllowOrigins []string `mapstructure:"allow_origins" yaml:"allow_origins"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{
			MaxArticlesPerSource: 60,
			Headless:             true,
			MaxWorkers:           6,
			RequestTimeout:       30 * time.Second,
			PageSettle:           300 * time.Millisecond,
			InvalidPatterns:      sources.DefaultInvalidPatterns(),
			UseFeeds:             true,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
			},
		},
		Fetcher: FetcherConfig{
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			MaxRedirects:    10,
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
			Stealth:         true,
			WindowSize:      "1920,1080",
		},
		Extract: ExtractConfig{
			MaxTitleChars:  500,
			MaxAuthorChars: 100,
			UseMetadata:    true,
		},
		Sentiment: SentimentConfig{
			Backend:   "vader",
			Threshold: 0.05,
		},
		Categorizer: CategorizerConfig{
			Strategy: "first_match",
		},
		Storage: StorageConfig{
			Driver:          "sqlite",
			DSN:             "news_articles.db",
			MongoDatabase:   "newsentiment",
			MongoCollection: "articles",
		},
		Report: ReportConfig{
			OutputDir: "./output",
			ExportDir: "./output/tableau",
			Limit:     1000,
			TrendDays: 7,
			MaxWords:  100,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			File:       "news_scraper.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
		API: APIConfig{
			Port:         8080,
			AllowOrigins: []string{"*"},
		},
	}
}
