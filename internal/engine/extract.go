package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/newsentiment/internal/config"
	"github.com/IshaanNene/newsentiment/internal/parser"
	"github.com/IshaanNene/newsentiment/internal/sources"
	"github.com/IshaanNene/newsentiment/internal/types"
)

// Extractor pulls the article fields out of a single page.
type Extractor struct {
	cfg    config.ExtractConfig
	logger *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(cfg config.ExtractConfig, logger *slog.Logger) *Extractor {
	return &Extractor{cfg: cfg, logger: logger.With("component", "extractor")}
}

// Extract loads rawURL and extracts it. A nil article with a nil error is an
// extraction miss. Load failures are returned as errors.
func (x *Extractor) Extract(ctx context.Context, loader Loader, src *sources.Compiled, rawURL string) (*types.Article, error) {
	resp, err := loader.Load(ctx, src, rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := resp.Document()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return x.ExtractPage(parser.NewPage(doc), rawURL, src), nil
}

// ExtractPage extracts every field independently with its own ordered
// candidates. It returns nil unless both title and body are non-empty.
func (x *Extractor) ExtractPage(page *parser.Page, rawURL string, src *sources.Compiled) *types.Article {
	page.Remove(src.Overlays)

	title, ok := parser.FirstMatch(page, parser.Each(src.Title, parser.FirstText))
	if !ok {
		x.logger.Debug("no title", "source", src.Name, "url", rawURL)
		return nil
	}

	body, ok := parser.FirstMatch(page, parser.Each(src.Body, func(s parser.Selector) parser.Extractor {
		return parser.JoinedText(s, "\n\n", x.cfg.MinParagraphChars)
	}))
	if !ok {
		x.logger.Debug("no body", "source", src.Name, "url", rawURL)
		return nil
	}

	a := types.NewArticle(rawURL, src.Name, parser.Truncate(title, x.cfg.MaxTitleChars), body)

	if raw, ok := parser.FirstMatch(page, parser.Each(src.Date, func(s parser.Selector) parser.Extractor {
		return parser.AttrOrText(s, "datetime", "content")
	})); ok {
		a.PublishedAt = parser.ParseDate(raw)
	}
	if author, ok := parser.FirstMatch(page, parser.Each(src.Author, parser.FirstText)); ok {
		a.Author = parser.Truncate(author, x.cfg.MaxAuthorChars)
	}

	if x.cfg.UseMetadata && (a.PublishedAt == nil || a.Author == "") {
		md := parser.ExtractMetadata(page)
		if a.PublishedAt == nil && md.DatePublished != "" {
			a.PublishedAt = parser.ParseDate(md.DatePublished)
		}
		if a.Author == "" && md.Author != "" {
			a.Author = parser.Truncate(md.Author, x.cfg.MaxAuthorChars)
		}
	}

	return a
}
