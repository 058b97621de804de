package pipeline

import (
	"html"
	"regexp"
	"strings"

	"github.com/IshaanNene/newsentiment/internal/types"
)

// --- Annotation Middleware ---

// HTMLSanitizeMiddleware strips leftover tags and entities from the title
// and author. Feed titles and meta tags often carry them.
type HTMLSanitizeMiddleware struct {
	stripRe *regexp.Regexp
}

func NewHTMLSanitizeMiddleware() *HTMLSanitizeMiddleware {
	return &HTMLSanitizeMiddleware{
		stripRe: regexp.MustCompile(`<[^>]*>`),
	}
}

func (m *HTMLSanitizeMiddleware) Name() string { return "html_sanitize" }

func (m *HTMLSanitizeMiddleware) Process(a *types.Article) (*types.Article, error) {
	a.Title = m.clean(a.Title)
	a.Author = m.clean(a.Author)
	return a, nil
}

func (m *HTMLSanitizeMiddleware) clean(s string) string {
	if s == "" {
		return s
	}
	cleaned := m.stripRe.ReplaceAllString(s, "")
	cleaned = html.UnescapeString(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

// LengthMiddleware recomputes content length and word count from the body.
type LengthMiddleware struct{}

func (m *LengthMiddleware) Name() string { return "length" }

func (m *LengthMiddleware) Process(a *types.Article) (*types.Article, error) {
	a.Recompute()
	return a, nil
}

// Annotator sets sentiment fields on an article.
type Annotator interface {
	Annotate(a *types.Article)
}

// SentimentMiddleware scores the title and body.
type SentimentMiddleware struct {
	Scorer Annotator
}

func (m *SentimentMiddleware) Name() string { return "sentiment" }

func (m *SentimentMiddleware) Process(a *types.Article) (*types.Article, error) {
	m.Scorer.Annotate(a)
	return a, nil
}

// Classifier maps text to a topic name.
type Classifier interface {
	Categorize(text string) string
}

// CategoryMiddleware assigns the topic category.
type CategoryMiddleware struct {
	Categorizer Classifier
}

func (m *CategoryMiddleware) Name() string { return "category" }

func (m *CategoryMiddleware) Process(a *types.Article) (*types.Article, error) {
	a.Category = m.Categorizer.Categorize(a.Text())
	return a, nil
}

// Annotation builds the standard chain every scraped article goes through.
func Annotation(p *Pipeline, scorer Annotator, categorizer Classifier, minBodyChars int) *Pipeline {
	return p.
		Use(&TrimMiddleware{}).
		Use(NewHTMLSanitizeMiddleware()).
		Use(&RequiredFieldsMiddleware{MinBodyChars: minBodyChars}).
		Use(NewDedupMiddleware()).
		Use(&LengthMiddleware{}).
		Use(&SentimentMiddleware{Scorer: scorer}).
		Use(&CategoryMiddleware{Categorizer: categorizer})
}
