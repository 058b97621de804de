package parser

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Metadata is the article information a page publishes about itself in
// JSON-LD and meta tags. Extraction falls back to it when no date or author
// selector matches.
type Metadata struct {
	Headline      string
	DatePublished string
	Author        string
}

var newsTypes = map[string]bool{
	"NewsArticle":          true,
	"Article":              true,
	"ReportageNewsArticle": true,
	"AnalysisNewsArticle":  true,
	"LiveBlogPosting":      true,
}

// ExtractMetadata reads JSON-LD article objects first and then the
// article:* and og:* meta tags.
func ExtractMetadata(p *Page) Metadata {
	var md Metadata
	doc := p.Document()

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		for _, obj := range decodeJSONLD(strings.TrimSpace(sel.Text())) {
			if !newsTypes[stringOf(obj["@type"])] {
				continue
			}
			if md.Headline == "" {
				md.Headline = stringOf(obj["headline"])
			}
			if md.DatePublished == "" {
				md.DatePublished = stringOf(obj["datePublished"])
			}
			if md.Author == "" {
				md.Author = authorOf(obj["author"])
			}
		}
		return md.DatePublished == "" || md.Author == ""
	})

	if md.DatePublished == "" {
		md.DatePublished = metaContent(doc, `meta[property="article:published_time"]`, `meta[name="pubdate"]`, `meta[itemprop="datePublished"]`)
	}
	if md.Author == "" {
		md.Author = metaContent(doc, `meta[name="author"]`, `meta[property="article:author"]`)
	}
	if md.Headline == "" {
		md.Headline = metaContent(doc, `meta[property="og:title"]`)
	}
	return md
}

func decodeJSONLD(raw string) []map[string]any {
	if raw == "" {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		if graph, ok := obj["@graph"].([]any); ok {
			return mapsOf(graph)
		}
		return []map[string]any{obj}
	}
	var arr []any
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		return mapsOf(arr)
	}
	return nil
}

func mapsOf(vals []any) []map[string]any {
	var out []map[string]any
	for _, v := range vals {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func stringOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		if len(t) > 0 {
			return stringOf(t[0])
		}
	}
	return ""
}

func authorOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return stringOf(t["name"])
	case []any:
		var names []string
		for _, a := range t {
			if n := authorOf(a); n != "" {
				names = append(names, n)
			}
		}
		return strings.Join(names, ", ")
	}
	return ""
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, s := range selectors {
		if v, ok := doc.Find(s).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
