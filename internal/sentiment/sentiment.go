// Package sentiment scores article text on a [-1, 1] scale and maps the
// score to a positive, negative or neutral label.
package sentiment

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/jonreiter/govader"

	"github.com/IshaanNene/newsentiment/internal/types"
)

// DefaultThreshold separates neutral scores from labelled ones.
const DefaultThreshold = 0.05

// Backend names.
const (
	BackendVader    = "vader"
	BackendKeywords = "keywords"
)

// Lexicon produces a compound score in [-1, 1].
type Lexicon interface {
	Compound(text string) (float64, error)
	Name() string
}

// Result is the outcome of scoring one text.
type Result struct {
	Score   float64
	Label   types.SentimentLabel
	Backend string
}

// Classify maps a score to a label. Scores of exactly ±threshold are neutral.
func Classify(score, threshold float64) types.SentimentLabel {
	switch {
	case score > threshold:
		return types.Positive
	case score < -threshold:
		return types.Negative
	default:
		return types.Neutral
	}
}

// Scorer runs the primary lexicon and falls back to keyword counting when
// the lexicon is missing or fails.
type Scorer struct {
	primary   Lexicon
	fallback  *KeywordScorer
	threshold float64
	logger    *slog.Logger
}

// NewScorer creates a scorer. primary may be nil, in which case the keyword
// fallback is always used.
func NewScorer(primary Lexicon, fallback *KeywordScorer, threshold float64, logger *slog.Logger) *Scorer {
	if fallback == nil {
		fallback = NewKeywordScorer(DefaultKeywords())
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Scorer{
		primary:   primary,
		fallback:  fallback,
		threshold: threshold,
		logger:    logger.With("component", "sentiment"),
	}
}

// New builds the scorer for a backend name. If the VADER lexicon cannot be
// loaded the scorer silently uses keywords.
func New(backend string, threshold float64, logger *slog.Logger) *Scorer {
	var primary Lexicon
	if backend != BackendKeywords {
		v, err := NewVader()
		if err != nil {
			logger.Warn("sentiment lexicon unavailable, using keyword scorer", "error", err)
		} else {
			primary = v
		}
	}
	return NewScorer(primary, nil, threshold, logger)
}

// Score computes the compound score and label for text.
func (s *Scorer) Score(text string) Result {
	if s.primary != nil {
		score, err := s.primary.Compound(text)
		if err == nil && !math.IsNaN(score) {
			score = clamp(score)
			return Result{Score: score, Label: Classify(score, s.threshold), Backend: s.primary.Name()}
		}
		s.logger.Debug("primary lexicon failed, falling back", "error", err)
	}

	score, _ := s.fallback.Compound(text)
	return Result{Score: score, Label: Classify(score, s.threshold), Backend: s.fallback.Name()}
}

// Annotate scores an article in place.
func (s *Scorer) Annotate(a *types.Article) {
	r := s.Score(a.Text())
	a.SentimentScore = r.Score
	a.SentimentLabel = r.Label
}

// Backend returns the name of the backend that will be tried first.
func (s *Scorer) Backend() string {
	if s.primary != nil {
		return s.primary.Name()
	}
	return s.fallback.Name()
}

// Vader wraps the VADER rule-based sentiment analyzer.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVader loads the VADER lexicon.
func NewVader() (v *Vader, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("%w: %v", types.ErrLexiconUnavailable, r)
		}
	}()
	a := govader.NewSentimentIntensityAnalyzer()
	if a == nil {
		return nil, types.ErrLexiconUnavailable
	}
	return &Vader{analyzer: a}, nil
}

// Compound implements Lexicon.
func (v *Vader) Compound(text string) (c float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", types.ErrLexiconUnavailable, r)
		}
	}()
	return v.analyzer.PolarityScores(text).Compound, nil
}

// Name implements Lexicon.
func (v *Vader) Name() string { return BackendVader }

func clamp(f float64) float64 {
	return math.Max(-1, math.Min(1, f))
}
