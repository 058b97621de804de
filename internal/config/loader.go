package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "NEWSENTIMENT"

// Load reads configuration from file, environment, and CLI flags.
// Priority (highest to lowest): CLI flags > env vars > config file > defaults.
// A .env file in the working directory is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("newsentiment")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".newsentiment"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env overrides resolve.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("scraper.max_articles_per_source", cfg.Scraper.MaxArticlesPerSource)
	v.SetDefault("scraper.headless", cfg.Scraper.Headless)
	v.SetDefault("scraper.max_workers", cfg.Scraper.MaxWorkers)
	v.SetDefault("scraper.request_timeout", cfg.Scraper.RequestTimeout)
	v.SetDefault("scraper.page_settle", cfg.Scraper.PageSettle)
	v.SetDefault("scraper.sources", cfg.Scraper.Sources)
	v.SetDefault("scraper.sources_file", cfg.Scraper.SourcesFile)
	v.SetDefault("scraper.method", cfg.Scraper.Method)
	v.SetDefault("scraper.invalid_patterns", cfg.Scraper.InvalidPatterns)
	v.SetDefault("scraper.use_feeds", cfg.Scraper.UseFeeds)
	v.SetDefault("scraper.user_agents", cfg.Scraper.UserAgents)

	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)
	v.SetDefault("fetcher.browser_bin", cfg.Fetcher.BrowserBin)
	v.SetDefault("fetcher.stealth", cfg.Fetcher.Stealth)
	v.SetDefault("fetcher.window_size", cfg.Fetcher.WindowSize)

	v.SetDefault("extract.min_paragraph_chars", cfg.Extract.MinParagraphChars)
	v.SetDefault("extract.min_body_chars", cfg.Extract.MinBodyChars)
	v.SetDefault("extract.max_title_chars", cfg.Extract.MaxTitleChars)
	v.SetDefault("extract.max_author_chars", cfg.Extract.MaxAuthorChars)
	v.SetDefault("extract.use_metadata", cfg.Extract.UseMetadata)

	v.SetDefault("sentiment.backend", cfg.Sentiment.Backend)
	v.SetDefault("sentiment.threshold", cfg.Sentiment.Threshold)

	v.SetDefault("categorizer.strategy", cfg.Categorizer.Strategy)

	v.SetDefault("storage.driver", cfg.Storage.Driver)
	v.SetDefault("storage.dsn", cfg.Storage.DSN)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", cfg.Storage.MongoCollection)

	v.SetDefault("report.output_dir", cfg.Report.OutputDir)
	v.SetDefault("report.export_dir", cfg.Report.ExportDir)
	v.SetDefault("report.limit", cfg.Report.Limit)
	v.SetDefault("report.trend_days", cfg.Report.TrendDays)
	v.SetDefault("report.max_words", cfg.Report.MaxWords)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", cfg.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", cfg.Logging.MaxAgeDays)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)

	v.SetDefault("api.port", cfg.API.Port)
	v.SetDefault("api.allow_origins", cfg.API.AllowOrigins)
}
