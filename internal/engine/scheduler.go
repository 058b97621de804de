package engine

import (
	"context"
	"sync"

	"github.com/IshaanNene/newsentiment/internal/pipeline"
	"github.com/IshaanNene/newsentiment/internal/sources"
	"github.com/IshaanNene/newsentiment/internal/types"
)

type tally struct {
	misses   int
	failures int
}

// scrape spreads urls across a fixed set of workers. Results come back in
// completion order, not discovery order.
func (e *Engine) scrape(ctx context.Context, src *sources.Compiled, urls []string, chain *pipeline.Pipeline, stats *Stats) ([]*types.Article, tally) {
	workers := e.cfg.Scraper.MaxWorkers
	if workers > len(urls) {
		workers = len(urls)
	}
	if workers < 1 {
		return nil, tally{}
	}

	jobs := make(chan string)
	var (
		mu       sync.Mutex
		articles []*types.Article
		t        tally
		wg       sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logger := e.logger.With("source", src.Name, "worker_id", id)

			for u := range jobs {
				stats.ActiveWorkers.Add(1)
				e.metrics.ActiveWorkers.Add(1)
				a, outcome := e.processURL(ctx, src, u, chain, stats)
				e.metrics.ActiveWorkers.Add(-1)
				stats.ActiveWorkers.Add(-1)

				mu.Lock()
				switch outcome {
				case outcomeOK:
					articles = append(articles, a)
				case outcomeMiss:
					t.misses++
				case outcomeFailed:
					t.failures++
				}
				mu.Unlock()

				if outcome == outcomeOK {
					logger.Debug("article scraped", "url", u, "label", a.SentimentLabel, "category", a.Category)
				}
			}
		}(i)
	}

feed:
	for _, u := range urls {
		select {
		case jobs <- u:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return articles, t
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeMiss
	outcomeFailed
)

// processURL handles a single article: fetch, extract, annotate.
func (e *Engine) processURL(ctx context.Context, src *sources.Compiled, rawURL string, chain *pipeline.Pipeline, stats *Stats) (*types.Article, outcome) {
	logger := e.logger.With("source", src.Name, "url", rawURL)

	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.Scraper.RequestTimeout)
	defer cancel()

	a, err := e.extractor.Extract(fetchCtx, e.deps.Loader, src, rawURL)
	if err != nil {
		stats.FetchFailures.Add(1)
		e.metrics.FetchFailures.Add(1)
		logger.Warn("article fetch failed", "error", err)
		return nil, outcomeFailed
	}
	stats.PagesFetched.Add(1)
	e.metrics.PagesFetched.Add(1)

	if a == nil {
		stats.ExtractionMisses.Add(1)
		e.metrics.ExtractionMisses.Add(1)
		logger.Debug("extraction miss")
		return nil, outcomeMiss
	}

	a, err = chain.Process(a)
	if err != nil {
		stats.FetchFailures.Add(1)
		e.metrics.FetchFailures.Add(1)
		logger.Warn("annotation failed", "error", err)
		return nil, outcomeFailed
	}
	if a == nil {
		stats.ExtractionMisses.Add(1)
		e.metrics.ExtractionMisses.Add(1)
		return nil, outcomeMiss
	}

	stats.ArticlesScraped.Add(1)
	e.metrics.ArticlesScraped.Add(1)
	switch a.SentimentLabel {
	case types.Positive:
		e.metrics.LabelPositive.Add(1)
	case types.Negative:
		e.metrics.LabelNegative.Add(1)
	default:
		e.metrics.LabelNeutral.Add(1)
	}
	return a, outcomeOK
}
