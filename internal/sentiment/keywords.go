package sentiment

import (
	"strings"
	"unicode"
)

// Keywords is an immutable pair of word lists for the fallback scorer.
type Keywords struct {
	Positive []string
	Negative []string
}

// DefaultKeywords returns the built-in fallback word lists.
func DefaultKeywords() Keywords {
	return Keywords{
		Positive: []string{
			"good", "great", "excellent", "amazing", "wonderful", "fantastic",
			"positive", "success", "win", "growth", "increase", "rise", "gain",
			"improve", "better", "strong", "confident", "optimistic",
			"breakthrough", "achievement", "boost", "surge", "soar", "rally",
			"expand", "advance", "progress", "victory",
		},
		Negative: []string{
			"bad", "terrible", "awful", "horrible", "negative", "fail",
			"failure", "decline", "decrease", "fall", "drop", "loss", "worse",
			"crisis", "problem", "issue", "concern", "worry", "pessimistic",
			"disaster", "crash", "plunge", "tumble", "collapse", "threat",
			"risk", "danger",
		},
	}
}

// KeywordScorer counts positive and negative words.
type KeywordScorer struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

// NewKeywordScorer builds a scorer from word lists. Words are matched
// case-insensitively as whole tokens.
func NewKeywordScorer(k Keywords) *KeywordScorer {
	s := &KeywordScorer{
		positive: make(map[string]struct{}, len(k.Positive)),
		negative: make(map[string]struct{}, len(k.Negative)),
	}
	for _, w := range k.Positive {
		s.positive[strings.ToLower(w)] = struct{}{}
	}
	for _, w := range k.Negative {
		s.negative[strings.ToLower(w)] = struct{}{}
	}
	return s
}

// Counts returns the number of positive and negative tokens in text.
func (s *KeywordScorer) Counts(text string) (pos, neg int) {
	for _, tok := range Tokenize(text) {
		if _, ok := s.positive[tok]; ok {
			pos++
		}
		if _, ok := s.negative[tok]; ok {
			neg++
		}
	}
	return pos, neg
}

// Compound implements Lexicon: (pos - neg) / max(1, pos + neg).
func (s *KeywordScorer) Compound(text string) (float64, error) {
	pos, neg := s.Counts(text)
	return float64(pos-neg) / float64(max(1, pos+neg)), nil
}

// Name implements Lexicon.
func (s *KeywordScorer) Name() string { return BackendKeywords }

// Tokenize lower-cases text and splits it on anything that is not a letter.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
