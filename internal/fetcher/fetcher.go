// Package fetcher loads listing and article pages, either over plain HTTP
// or through a pooled headless browser.
package fetcher

import (
	"context"

	"github.com/IshaanNene/newsentiment/internal/types"
)

// Options are per-source page loading hints.
type Options struct {
	// Scroll moves the viewport down before the DOM is read so lazy
	// content renders. Browser only.
	Scroll bool

	// Overlays are CSS selectors removed from the rendered page before the
	// DOM is read. Browser only.
	Overlays []string
}

// Fetcher is the interface for all page fetcher implementations.
type Fetcher interface {
	// Fetch retrieves the page at rawURL.
	Fetch(ctx context.Context, rawURL string, opts Options) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}
