package pipeline

import (
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/IshaanNene/newsentiment/internal/types"
)

// Middleware processes an article and returns the (possibly modified) article.
// Return nil to drop the article from the pipeline.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms an article. Return nil to drop it.
	Process(a *types.Article) (*types.Article, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) *Pipeline {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
	return p
}

// Process runs the article through all middleware in order.
func (p *Pipeline) Process(a *types.Article) (*types.Article, error) {
	current := a

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{
				Stage: mw.Name(),
				URL:   current.URL,
				Err:   err,
			}
		}
		if result == nil {
			p.logger.Debug("article dropped", "stage", mw.Name(), "url", a.URL)
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}

// Names lists the stages in order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.middlewares))
	for i, mw := range p.middlewares {
		names[i] = mw.Name()
	}
	return names
}

// --- Built-in Middleware ---

// TrimMiddleware trims whitespace from the text fields.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(a *types.Article) (*types.Article, error) {
	a.Title = strings.TrimSpace(a.Title)
	a.Body = strings.TrimSpace(a.Body)
	a.Author = strings.TrimSpace(a.Author)
	return a, nil
}

// RequiredFieldsMiddleware drops articles whose title or body is empty, or
// whose body is shorter than MinBodyChars runes.
type RequiredFieldsMiddleware struct {
	MinBodyChars int
}

func (m *RequiredFieldsMiddleware) Name() string { return "required_fields" }

func (m *RequiredFieldsMiddleware) Process(a *types.Article) (*types.Article, error) {
	if a.Title == "" || a.Body == "" {
		return nil, nil
	}
	if m.MinBodyChars > 0 && utf8.RuneCountInString(a.Body) < m.MinBodyChars {
		return nil, nil
	}
	return a, nil
}

// DedupMiddleware drops articles whose URL has already passed through.
type DedupMiddleware struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewDedupMiddleware() *DedupMiddleware {
	return &DedupMiddleware{
		seen: make(map[string]struct{}),
	}
}

func (m *DedupMiddleware) Name() string { return "dedup" }

func (m *DedupMiddleware) Process(a *types.Article) (*types.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.seen[a.URL]; exists {
		return nil, nil
	}
	m.seen[a.URL] = struct{}{}
	return a, nil
}

// DefaultValueMiddleware fills an empty category.
type DefaultValueMiddleware struct {
	Category string
}

func (m *DefaultValueMiddleware) Name() string { return "default_values" }

func (m *DefaultValueMiddleware) Process(a *types.Article) (*types.Article, error) {
	if a.Category == "" {
		a.Category = m.Category
	}
	return a, nil
}
