// Package report computes read-only statistics over stored articles and
// renders them as text, charts and flat exports.
package report

import (
	"errors"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/IshaanNene/newsentiment/internal/types"
)

// ErrNoData is returned when a report is asked for over zero articles.
var ErrNoData = errors.New("no articles available")

// DefaultTrendDays is the trailing window of the daily trend.
const DefaultTrendDays = 7

const dayLayout = "2006-01-02"

// Mean is an average over a named group.
type Mean struct {
	Name  string  `json:"name"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Count is a named tally.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DayMean is the mean sentiment of one calendar day (UTC).
type DayMean struct {
	Day   string  `json:"day"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Date returns the day as a time at midnight UTC.
func (d DayMean) Date() time.Time {
	t, _ := time.Parse(dayLayout, d.Day)
	return t
}

// Trends are the aggregates every report is built from.
type Trends struct {
	Total             int                  `json:"total_articles"`
	Start             time.Time            `json:"start"`
	End               time.Time            `json:"end"`
	AvgContentLength  float64              `json:"avg_content_length"`
	OverallSentiment  float64              `json:"overall_sentiment"`
	Distribution      map[string]int       `json:"sentiment_distribution"`
	SourceCounts      []Count              `json:"source_counts"`
	CategoryCounts    []Count              `json:"category_counts"`
	SourceSentiment   []Mean               `json:"source_sentiment"`
	CategorySentiment []Mean               `json:"category_sentiment"`
	Daily             []DayMean            `json:"daily_sentiment"`
	DailyBySource     map[string][]DayMean `json:"daily_sentiment_by_source"`
	WindowDays        int                  `json:"window_days"`
}

// AnalyzeTrends aggregates articles. The daily series covers the trailing
// window of calendar days (UTC) ending on the day of the most recent scrape.
func AnalyzeTrends(articles []*types.Article, days int) (*Trends, error) {
	if len(articles) == 0 {
		return nil, ErrNoData
	}
	if days <= 0 {
		days = DefaultTrendDays
	}

	t := &Trends{
		Total:         len(articles),
		Start:         articles[0].ScrapedAt,
		End:           articles[0].ScrapedAt,
		Distribution:  make(map[string]int, len(types.Labels)),
		DailyBySource: make(map[string][]DayMean),
		WindowDays:    days,
	}

	scores := make([]float64, len(articles))
	lengths := make([]float64, len(articles))
	bySource := make(map[string][]float64)
	byCategory := make(map[string][]float64)
	for i, a := range articles {
		scores[i] = a.SentimentScore
		lengths[i] = float64(a.ContentLength)
		t.Distribution[string(a.SentimentLabel)]++
		bySource[a.Source] = append(bySource[a.Source], a.SentimentScore)
		byCategory[a.Category] = append(byCategory[a.Category], a.SentimentScore)
		if a.ScrapedAt.Before(t.Start) {
			t.Start = a.ScrapedAt
		}
		if a.ScrapedAt.After(t.End) {
			t.End = a.ScrapedAt
		}
	}

	t.OverallSentiment = stat.Mean(scores, nil)
	t.AvgContentLength = stat.Mean(lengths, nil)
	t.SourceSentiment = means(bySource)
	t.CategorySentiment = means(byCategory)
	t.SourceCounts = counts(bySource)
	t.CategoryCounts = counts(byCategory)

	y, m, d := t.End.UTC().Date()
	since := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))
	daily := make(map[string][]float64)
	dailySource := make(map[string]map[string][]float64)
	for _, a := range articles {
		if a.ScrapedAt.Before(since) {
			continue
		}
		day := a.ScrapedAt.UTC().Format(dayLayout)
		daily[day] = append(daily[day], a.SentimentScore)
		if dailySource[a.Source] == nil {
			dailySource[a.Source] = make(map[string][]float64)
		}
		dailySource[a.Source][day] = append(dailySource[a.Source][day], a.SentimentScore)
	}
	t.Daily = dayMeans(daily)
	for src, m := range dailySource {
		t.DailyBySource[src] = dayMeans(m)
	}
	return t, nil
}

// MostCovered returns the category with the most articles.
func (t *Trends) MostCovered() Count {
	if len(t.CategoryCounts) == 0 {
		return Count{}
	}
	return t.CategoryCounts[0]
}

// Percent returns the share of articles carrying label.
func (t *Trends) Percent(label types.SentimentLabel) float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Distribution[string(label)]) / float64(t.Total) * 100
}

// means returns group means sorted by mean descending, then name.
func means(groups map[string][]float64) []Mean {
	out := make([]Mean, 0, len(groups))
	for name, vals := range groups {
		out = append(out, Mean{Name: name, Mean: stat.Mean(vals, nil), Count: len(vals)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return out[i].Mean > out[j].Mean
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// counts returns group sizes sorted by count descending, then name.
func counts(groups map[string][]float64) []Count {
	out := make([]Count, 0, len(groups))
	for name, vals := range groups {
		out = append(out, Count{Name: name, Count: len(vals)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func dayMeans(days map[string][]float64) []DayMean {
	out := make([]DayMean, 0, len(days))
	for day, vals := range days {
		out = append(out, DayMean{Day: day, Mean: stat.Mean(vals, nil), Count: len(vals)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
