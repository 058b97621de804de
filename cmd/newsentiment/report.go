package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/newsentiment/internal/report"
	"github.com/IshaanNene/newsentiment/internal/storage"
	"github.com/IshaanNene/newsentiment/internal/types"
)

// queryFlags are shared by every command that reads stored articles.
type queryFlags struct {
	limit  int
	source string
	label  string
	since  string
	until  string
	days   int
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum articles to read (0 = config value)")
	cmd.Flags().StringVar(&f.source, "source", "", "only read this source")
	cmd.Flags().StringVar(&f.since, "since", "", "earliest scrape time (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.until, "until", "", "latest scrape time (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.days, "days", 0, "trend window in days (0 = config value)")
}

func (f *queryFlags) query(a *app) (storage.Query, error) {
	q := storage.Query{Limit: a.cfg.Report.Limit, Source: f.source}
	if f.limit > 0 {
		q.Limit = f.limit
	}
	label, err := types.ParseLabel(f.label)
	if err != nil {
		return q, err
	}
	q.Label = label
	if f.since != "" {
		if q.Since, err = storage.ParseTime(f.since, false); err != nil {
			return q, err
		}
	}
	if f.until != "" {
		if q.Until, err = storage.ParseTime(f.until, true); err != nil {
			return q, err
		}
	}
	return q, nil
}

func (f *queryFlags) trendDays(a *app) int {
	if f.days > 0 {
		return f.days
	}
	return a.cfg.Report.TrendDays
}

// loadArticles opens the configured store, reads the filtered rows and
// closes it again.
func loadArticles(ctx context.Context, a *app, f *queryFlags) ([]*types.Article, error) {
	q, err := f.query(a)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(a.cfg.Storage, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	articles, err := store.Articles(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("read articles: %w", err)
	}
	a.logger.Debug("articles loaded", "count", len(articles), "store", store.Name())
	return articles, nil
}

// reportCmd creates the "report" subcommand.
func reportCmd() *cobra.Command {
	var f queryFlags
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the sentiment summary of stored articles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			articles, err := loadArticles(cmd.Context(), a, &f)
			if err != nil {
				return err
			}
			text, err := report.SummaryReport(articles, f.trendDays(a))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// marketCmd creates the "market" subcommand.
func marketCmd() *cobra.Command {
	var f queryFlags
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Print the market sentiment report for business, technology and world news",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			reg, err := sourceInfo(a.cfg)
			if err != nil {
				return fmt.Errorf("load sources: %w", err)
			}
			articles, err := loadArticles(cmd.Context(), a, &f)
			if err != nil {
				return err
			}
			r, err := report.BuildMarketReport(articles, reg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), r.Render())
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// dashboardCmd creates the "dashboard" subcommand.
func dashboardCmd() *cobra.Command {
	var (
		f   queryFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Render the six panel dashboard PNG",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			articles, err := loadArticles(cmd.Context(), a, &f)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = filepath.Join(a.cfg.Report.OutputDir, "news_sentiment_dashboard.png")
			}
			if err := report.CreateVisualizations(articles, path, f.trendDays(a)); err != nil {
				return fmt.Errorf("dashboard: %w", err)
			}
			a.logger.Info("dashboard written", "path", path, "articles", len(articles))
			fmt.Fprintf(cmd.OutOrStdout(), "Dashboard saved to %s\n", path)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "", "output PNG path")
	return cmd
}

// wordcloudCmd creates the "wordcloud" subcommand.
func wordcloudCmd() *cobra.Command {
	var (
		f        queryFlags
		out      string
		maxWords int
	)
	cmd := &cobra.Command{
		Use:   "wordcloud",
		Short: "Render a word cloud PNG, optionally for one sentiment label",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			// The label filter is applied by the word cloud, not the query,
			// so the same rows can be reused for every label.
			label, err := types.ParseLabel(f.label)
			if err != nil {
				return err
			}
			read := f
			read.label = ""
			articles, err := loadArticles(cmd.Context(), a, &read)
			if err != nil {
				return err
			}

			name := "all"
			if label != "" {
				name = string(label)
			}
			path := out
			if path == "" {
				path = filepath.Join(a.cfg.Report.OutputDir, "wordcloud_"+name+".png")
			}
			if maxWords <= 0 {
				maxWords = a.cfg.Report.MaxWords
			}
			if err := report.CreateWordCloud(articles, label, path, maxWords); err != nil {
				return fmt.Errorf("word cloud: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Word cloud saved to %s\n", path)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.label, "label", "", "sentiment label: positive, negative or neutral (default: all)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output PNG path")
	cmd.Flags().IntVar(&maxWords, "max-words", 0, "maximum words drawn (0 = config value)")
	return cmd
}

// exportCmd creates the "export" subcommand.
func exportCmd() *cobra.Command {
	var (
		f   queryFlags
		dir string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the article and per-source metrics CSV files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			reg, err := sourceInfo(a.cfg)
			if err != nil {
				return fmt.Errorf("load sources: %w", err)
			}
			articles, err := loadArticles(cmd.Context(), a, &f)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = a.cfg.Report.ExportDir
			}
			res, err := report.Export(articles, reg, dir)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Export complete:")
			fmt.Fprintf(w, "   - %s: %d rows\n", res.ArticlesPath, res.ArticleRows)
			fmt.Fprintf(w, "   - %s: %d rows\n", res.MetricsPath, res.MetricsRows)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.label, "label", "", "only export this sentiment label")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "export directory (default: report.export_dir)")
	return cmd
}
