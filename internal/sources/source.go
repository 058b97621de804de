// Package sources holds the static, read-only description of every news
// source: where its listing pages live and which selectors pull each field
// out of its pages.
package sources

import (
	"fmt"
	"slices"
	"strings"

	"github.com/IshaanNene/newsentiment/internal/parser"
	"github.com/IshaanNene/newsentiment/internal/types"
)

// Method selects how a source's pages are loaded.
type Method string

const (
	MethodBrowser Method = "browser"
	MethodHTTP    Method = "http"
)

// Selectors lists ordered candidates per extractable field. The first
// candidate that produces a value wins.
type Selectors struct {
	Links  []string `yaml:"links"  json:"links"`
	Title  []string `yaml:"title"  json:"title"`
	Body   []string `yaml:"body"   json:"body"`
	Date   []string `yaml:"date"   json:"date"`
	Author []string `yaml:"author" json:"author"`
}

// Source describes one news outlet.
type Source struct {
	Name        string    `yaml:"name"         json:"name"`
	Method      Method    `yaml:"method"       json:"method"`
	Region      string    `yaml:"region"       json:"region"`
	BaseURL     string    `yaml:"base_url"     json:"base_url"`
	ListingURLs []string  `yaml:"listing_urls" json:"listing_urls"`
	FeedURLs    []string  `yaml:"feed_urls"    json:"feed_urls,omitempty"`
	StripQuery  bool      `yaml:"strip_query"  json:"strip_query"`
	Scroll      bool      `yaml:"scroll"       json:"scroll"`
	Overlays    []string  `yaml:"overlays"     json:"overlays,omitempty"`
	Selectors   Selectors `yaml:"selectors"    json:"selectors"`
}

// Compiled is a Source whose selector candidates have been compiled.
type Compiled struct {
	Source

	Links    []parser.Selector
	Title    []parser.Selector
	Body     []parser.Selector
	Date     []parser.Selector
	Author   []parser.Selector
	Overlays []parser.Selector
}

// clone returns a deep copy so callers can never mutate registry state.
func (s Source) clone() Source {
	c := s
	c.ListingURLs = slices.Clone(s.ListingURLs)
	c.FeedURLs = slices.Clone(s.FeedURLs)
	c.Overlays = slices.Clone(s.Overlays)
	c.Selectors = Selectors{
		Links:  slices.Clone(s.Selectors.Links),
		Title:  slices.Clone(s.Selectors.Title),
		Body:   slices.Clone(s.Selectors.Body),
		Date:   slices.Clone(s.Selectors.Date),
		Author: slices.Clone(s.Selectors.Author),
	}
	return c
}

// compile validates the source and compiles its selectors.
func (s Source) compile() (*Compiled, error) {
	s.Name = strings.ToLower(strings.TrimSpace(s.Name))
	if s.Name == "" {
		return nil, fmt.Errorf("source name must not be empty")
	}
	if s.Method == "" {
		s.Method = MethodBrowser
	}
	if s.Method != MethodBrowser && s.Method != MethodHTTP {
		return nil, fmt.Errorf("source %q: method must be 'browser' or 'http', got %q", s.Name, s.Method)
	}
	if len(s.ListingURLs) == 0 && len(s.FeedURLs) == 0 {
		return nil, fmt.Errorf("source %q: needs at least one listing or feed URL", s.Name)
	}
	if len(s.Selectors.Title) == 0 || len(s.Selectors.Body) == 0 {
		return nil, fmt.Errorf("source %q: title and body selectors are required", s.Name)
	}
	if len(s.ListingURLs) > 0 && len(s.Selectors.Links) == 0 {
		return nil, fmt.Errorf("source %q: listing URLs need link selectors", s.Name)
	}

	c := &Compiled{Source: s.clone()}
	fields := []struct {
		name string
		raw  []string
		dst  *[]parser.Selector
	}{
		{"links", s.Selectors.Links, &c.Links},
		{"title", s.Selectors.Title, &c.Title},
		{"body", s.Selectors.Body, &c.Body},
		{"date", s.Selectors.Date, &c.Date},
		{"author", s.Selectors.Author, &c.Author},
		{"overlay", s.Overlays, &c.Overlays},
	}
	for _, f := range fields {
		for _, raw := range f.raw {
			sel, err := parser.Compile(raw)
			if err != nil {
				return nil, &types.SelectorError{Source: s.Name, Field: f.name, Selector: raw, Err: err}
			}
			*f.dst = append(*f.dst, sel)
		}
	}
	return c, nil
}
