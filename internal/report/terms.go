package report

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bbalet/stopwords"

	"github.com/IshaanNene/newsentiment/internal/types"
)

// Term is a word and how often it occurs.
type Term struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// minTermRunes drops short tokens that survive stop-word removal.
const minTermRunes = 4

// TermFrequencies counts the non-stop-words of every article's title and
// body. Only alphabetic words of at least four letters are kept.
func TermFrequencies(articles []*types.Article) map[string]int {
	freq := make(map[string]int)
	for _, a := range articles {
		cleaned := stopwords.CleanString(a.Text(), "en", true)
		for _, w := range strings.Fields(strings.ToLower(cleaned)) {
			w = strings.Trim(w, "-_'")
			if utf8.RuneCountInString(w) < minTermRunes || !alphabetic(w) {
				continue
			}
			freq[w]++
		}
	}
	return freq
}

// TopTerms returns the n most frequent terms, ties broken alphabetically.
func TopTerms(articles []*types.Article, n int) []Term {
	return rank(TermFrequencies(articles), n)
}

func rank(freq map[string]int, n int) []Term {
	out := make([]Term, 0, len(freq))
	for w, c := range freq {
		out = append(out, Term{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func alphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
