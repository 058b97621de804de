package types

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// SentimentLabel is the three-way classification of a sentiment score.
type SentimentLabel string

const (
	Positive SentimentLabel = "positive"
	Negative SentimentLabel = "negative"
	Neutral  SentimentLabel = "neutral"
)

// Labels lists every label in display order.
var Labels = []SentimentLabel{Positive, Neutral, Negative}

// ParseLabel converts a user supplied label. The empty string means "any".
func ParseLabel(s string) (SentimentLabel, error) {
	switch l := SentimentLabel(strings.ToLower(strings.TrimSpace(s))); l {
	case "", Positive, Negative, Neutral:
		return l, nil
	default:
		return "", fmt.Errorf("unknown sentiment label %q", s)
	}
}

// Article is a scraped, scored and categorized news article.
type Article struct {
	ID             uint           `json:"id,omitempty"`
	URL            string         `json:"url"`
	Title          string         `json:"title"`
	Body           string         `json:"content"`
	Source         string         `json:"source"`
	PublishedAt    *time.Time     `json:"published_date,omitempty"`
	Author         string         `json:"author,omitempty"`
	Category       string         `json:"category"`
	SentimentScore float64        `json:"sentiment_score"`
	SentimentLabel SentimentLabel `json:"sentiment_label"`
	ScrapedAt      time.Time      `json:"scraped_at"`
	ContentLength  int            `json:"content_length"`
	WordCount      int            `json:"word_count"`
}

// NewArticle builds an article with its length fields filled in.
func NewArticle(url, source, title, body string) *Article {
	a := &Article{
		URL:    url,
		Source: source,
		Title:  title,
		Body:   body,
	}
	a.Recompute()
	return a
}

// Recompute derives ContentLength and WordCount from the body.
func (a *Article) Recompute() {
	a.ContentLength = utf8.RuneCountInString(a.Body)
	a.WordCount = len(strings.Fields(a.Body))
}

// Text returns the title and body joined, which is what scoring and
// categorization read.
func (a *Article) Text() string {
	return a.Title + "\n" + a.Body
}

// Validate reports whether the article carries every required field.
func (a *Article) Validate() error {
	switch {
	case a == nil:
		return fmt.Errorf("%w: nil record", ErrMalformedArticle)
	case strings.TrimSpace(a.URL) == "":
		return fmt.Errorf("%w: missing url", ErrMalformedArticle)
	case strings.TrimSpace(a.Title) == "":
		return fmt.Errorf("%w: missing title", ErrMalformedArticle)
	case strings.TrimSpace(a.Body) == "":
		return fmt.Errorf("%w: missing content", ErrMalformedArticle)
	case strings.TrimSpace(a.Source) == "":
		return fmt.Errorf("%w: missing source", ErrMalformedArticle)
	}
	return nil
}

// AuthorOrUnknown returns the author, or "Unknown" when none was found.
func (a *Article) AuthorOrUnknown() string {
	if a.Author == "" {
		return "Unknown"
	}
	return a.Author
}
