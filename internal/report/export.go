package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/IshaanNene/newsentiment/internal/types"
)

// Export file names inside the export directory.
const (
	ArticlesFile      = "news_sentiment_data.csv"
	SourceMetricsFile = "source_metrics.csv"
)

// ExportResult reports what an export wrote.
type ExportResult struct {
	ArticlesPath string
	ArticleRows  int
	MetricsPath  string
	MetricsRows  int
}

var articleHeader = []string{
	"id", "url", "title", "content", "source", "published_date", "author",
	"category", "sentiment_score", "sentiment_label", "scraped_at",
	"content_length", "word_count", "sentiment_category", "scraped_date",
	"scraped_hour", "day_of_week", "region", "method",
}

var metricsHeader = []string{
	"method", "source", "region", "sentiment_score_mean", "sentiment_score_std",
	"sentiment_score_count", "content_length_mean",
}

// SentimentBin is the five-way bucket used in exports.
func SentimentBin(score float64) string {
	switch {
	case score >= 0.3:
		return "Very Positive"
	case score >= 0.1:
		return "Positive"
	case score >= -0.1:
		return "Neutral"
	case score >= -0.3:
		return "Negative"
	default:
		return "Very Negative"
	}
}

// Export writes both CSV files into dir.
func Export(articles []*types.Article, info SourceInfo, dir string) (*ExportResult, error) {
	if len(articles) == 0 {
		return nil, ErrNoData
	}
	res := &ExportResult{
		ArticlesPath: filepath.Join(dir, ArticlesFile),
		MetricsPath:  filepath.Join(dir, SourceMetricsFile),
	}
	var err error
	if res.ArticleRows, err = ExportArticlesCSV(articles, info, res.ArticlesPath); err != nil {
		return nil, err
	}
	if res.MetricsRows, err = ExportSourceMetricsCSV(articles, info, res.MetricsPath); err != nil {
		return nil, err
	}
	return res, nil
}

// ExportArticlesCSV writes one row per article with derived time and
// sentiment columns. It returns the number of data rows written.
func ExportArticlesCSV(articles []*types.Article, info SourceInfo, path string) (int, error) {
	rows := make([][]string, 0, len(articles))
	for _, a := range articles {
		published := ""
		if a.PublishedAt != nil {
			published = a.PublishedAt.UTC().Format(time.RFC3339)
		}
		scraped := a.ScrapedAt.UTC()
		rows = append(rows, []string{
			strconv.FormatUint(uint64(a.ID), 10),
			a.URL,
			a.Title,
			a.Body,
			a.Source,
			published,
			a.AuthorOrUnknown(),
			a.Category,
			strconv.FormatFloat(a.SentimentScore, 'f', 4, 64),
			string(a.SentimentLabel),
			scraped.Format(time.RFC3339),
			strconv.Itoa(a.ContentLength),
			strconv.Itoa(a.WordCount),
			SentimentBin(a.SentimentScore),
			scraped.Format(dayLayout),
			strconv.Itoa(scraped.Hour()),
			scraped.Weekday().String(),
			regionOf(info, a.Source),
			methodName(info, a.Source),
		})
	}
	return len(rows), writeCSV(path, articleHeader, rows)
}

// ExportSourceMetricsCSV writes per method and source aggregates. The
// standard deviation is the sample deviation and is left blank for
// single-article groups.
func ExportSourceMetricsCSV(articles []*types.Article, info SourceInfo, path string) (int, error) {
	type key struct{ method, source string }
	type group struct {
		scores, lengths []float64
	}
	groups := make(map[key]*group)
	for _, a := range articles {
		k := key{methodName(info, a.Source), a.Source}
		g, ok := groups[k]
		if !ok {
			g = &group{}
			groups[k] = g
		}
		g.scores = append(g.scores, a.SentimentScore)
		g.lengths = append(g.lengths, float64(a.ContentLength))
	}

	keys := make([]key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].method != keys[j].method {
			return keys[i].method < keys[j].method
		}
		return keys[i].source < keys[j].source
	})

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		std := ""
		if len(g.scores) > 1 {
			std = strconv.FormatFloat(stat.StdDev(g.scores, nil), 'f', 4, 64)
		}
		rows = append(rows, []string{
			k.method,
			k.source,
			regionOf(info, k.source),
			strconv.FormatFloat(stat.Mean(g.scores, nil), 'f', 4, 64),
			std,
			strconv.Itoa(len(g.scores)),
			strconv.FormatFloat(stat.Mean(g.lengths, nil), 'f', 1, 64),
		})
	}
	return len(rows), writeCSV(path, metricsHeader, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write CSV header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write CSV rows: %w", err)
	}
	return f.Close()
}

func regionOf(info SourceInfo, source string) string {
	if info == nil {
		return "Other"
	}
	return info.Region(source)
}
