// Package categorize assigns a topic category to article text by keyword
// lookup.
package categorize

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// DefaultCategory is returned when no keyword list matches.
const DefaultCategory = "General"

// Strategy names.
const (
	FirstMatch = "first_match"
	MostHits   = "most_hits"
)

// Category is a named keyword list. Keywords may be single words or
// multi-word phrases.
type Category struct {
	Name     string
	Keywords []string
}

// DefaultCategories returns the built-in categories in priority order.
func DefaultCategories() []Category {
	return []Category{
		{"Business", []string{"business", "economy", "market", "stock", "finance", "trade", "company", "corporate", "investment", "bank"}},
		{"Technology", []string{"technology", "tech", "ai", "artificial intelligence", "software", "computer", "digital", "cyber", "innovation", "startup"}},
		{"Politics", []string{"politics", "government", "election", "vote", "congress", "senate", "president", "policy", "law", "parliament"}},
		{"Health", []string{"health", "medical", "medicine", "doctor", "hospital", "disease", "virus", "vaccine", "treatment", "healthcare"}},
		{"World", []string{"international", "global", "world", "country", "nation", "war", "conflict", "diplomatic", "foreign", "crisis"}},
		{"Sports", []string{"sport", "game", "team", "player", "match", "championship", "league", "tournament", "olympic", "football"}},
	}
}

// form is one spelling of a keyword stem and the word endings it accepts.
type form struct {
	stem     string
	suffixes []string
}

type compiled struct {
	name     string
	keywords [][]form
}

// regularSuffixes are the plural and inflected endings accepted after any
// keyword, so "market" matches "markets" but "war" does not match "warning".
var regularSuffixes = []string{"", "s", "es", "ed", "ing", "er", "ers"}

// forms expands a normalized keyword (" market ") into the stems that
// Categorize looks for.
func forms(kw string) []form {
	stem := strings.TrimSuffix(kw, " ")
	out := []form{{stem: stem, suffixes: regularSuffixes}}
	switch {
	case strings.HasSuffix(stem, "y"):
		// company -> companies, comply -> complied
		out = append(out, form{stem: stem[:len(stem)-1] + "i", suffixes: []string{"es", "ed"}})
	case strings.HasSuffix(stem, "e"):
		// trade -> trading, traded, trader
		out = append(out, form{stem: stem[:len(stem)-1], suffixes: []string{"ing"}})
		out = append(out, form{stem: stem, suffixes: []string{"d", "r", "rs"}})
	}
	return out
}

// Categorizer is an immutable, ordered keyword classifier.
type Categorizer struct {
	categories []compiled
	mostHits   bool
}

// New builds a categorizer. The strategy is FirstMatch (first category in
// order with any match) or MostHits (highest hit count, earlier category
// on ties).
func New(categories []Category, strategy string) (*Categorizer, error) {
	c := &Categorizer{}
	switch strategy {
	case "", FirstMatch:
	case MostHits:
		c.mostHits = true
	default:
		return nil, fmt.Errorf("unknown categorizer strategy %q", strategy)
	}

	for _, cat := range categories {
		if strings.TrimSpace(cat.Name) == "" {
			return nil, fmt.Errorf("category name must not be empty")
		}
		cc := compiled{name: cat.Name}
		for _, kw := range cat.Keywords {
			if p := normalize(kw); strings.TrimSpace(p) != "" {
				cc.keywords = append(cc.keywords, forms(p))
			}
		}
		c.categories = append(c.categories, cc)
	}
	return c, nil
}

// Default returns the built-in first-match categorizer.
func Default() *Categorizer {
	c, _ := New(DefaultCategories(), FirstMatch)
	return c
}

// Categorize returns the category for text, or DefaultCategory.
func (c *Categorizer) Categorize(text string) string {
	norm := normalize(text)

	best, bestHits := DefaultCategory, 0
	for _, cat := range c.categories {
		hits := 0
		for _, kw := range cat.keywords {
			if matches(norm, kw) {
				hits++
				if !c.mostHits {
					return cat.name
				}
			}
		}
		if hits > bestHits {
			best, bestHits = cat.name, hits
		}
	}
	return best
}

// Names returns category names in priority order, followed by the default.
func (c *Categorizer) Names() []string {
	out := make([]string, 0, len(c.categories)+1)
	for _, cat := range c.categories {
		out = append(out, cat.name)
	}
	return append(out, DefaultCategory)
}

// matches reports whether any form of a keyword starts a word in norm and
// is followed only by one of its accepted endings.
func matches(norm string, kw []form) bool {
	for _, f := range kw {
		for i := 0; i < len(norm); {
			j := strings.Index(norm[i:], f.stem)
			if j < 0 {
				break
			}
			rest := norm[i+j+len(f.stem):]
			// norm always ends in a space, so the word end is found
			rest = rest[:strings.IndexByte(rest, ' ')]
			if slices.Contains(f.suffixes, rest) {
				return true
			}
			i += j + 1
		}
	}
	return false
}

// normalize lower-cases text and reduces it to space separated letter and
// digit runs, padded with a space on both ends so keywords are anchored at
// word starts.
func normalize(text string) string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return " " + strings.Join(fields, " ") + " "
}
