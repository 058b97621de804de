package parser

import (
	"strings"
	"unicode/utf8"
)

// Extractor reads one field value from a page. An empty result means the
// candidate did not match.
type Extractor func(p *Page) string

// FirstMatch runs the candidates in order and returns the first non-empty
// value.
func FirstMatch(p *Page, candidates []Extractor) (string, bool) {
	for _, extract := range candidates {
		if v := strings.TrimSpace(extract(p)); v != "" {
			return v, true
		}
	}
	return "", false
}

// FirstText yields the text of the first matched element that has any.
func FirstText(sel Selector) Extractor {
	return func(p *Page) string {
		for _, n := range p.Elements(sel) {
			if t := Text(n); t != "" {
				return t
			}
		}
		return ""
	}
}

// JoinedText yields the text of every matched element joined by sep.
// Elements shorter than minChars runes are ignored.
func JoinedText(sel Selector, sep string, minChars int) Extractor {
	return func(p *Page) string {
		var parts []string
		for _, n := range p.Elements(sel) {
			t := Text(n)
			if t == "" || utf8.RuneCountInString(t) < minChars {
				continue
			}
			parts = append(parts, t)
		}
		return strings.Join(parts, sep)
	}
}

// AttrOrText yields the first non-empty attribute from attrs on the first
// matched element, falling back to its text.
func AttrOrText(sel Selector, attrs ...string) Extractor {
	return func(p *Page) string {
		for _, n := range p.Elements(sel) {
			for _, a := range attrs {
				if v := Attr(n, a); v != "" {
					return v
				}
			}
			if t := Text(n); t != "" {
				return t
			}
		}
		return ""
	}
}

// Each maps every selector through build, preserving order.
func Each(sels []Selector, build func(Selector) Extractor) []Extractor {
	out := make([]Extractor, len(sels))
	for i, s := range sels {
		out[i] = build(s)
	}
	return out
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}
