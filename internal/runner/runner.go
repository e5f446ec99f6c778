// Package runner fans venue processing out over a bounded worker pool.
package runner

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venuescout/venuescout/internal/crawler"
)

// VenueProcessor runs the scrape pipeline for a single venue.
type VenueProcessor interface {
	Process(ctx context.Context, venue crawler.Venue) (crawler.ScrapeResult, error)
}

// Runner multiplexes venues onto a fixed number of workers. Each venue's
// pipeline is sequential; venues run concurrently, with total request
// pressure bounded by the fetcher's own permits.
type Runner struct {
	processor VenueProcessor
	workers   int
	logger    *zap.Logger
}

// New builds a Runner. workers <= 0 falls back to a single worker.
func New(processor VenueProcessor, workers int, logger *zap.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		processor: processor,
		workers:   workers,
		logger:    logger,
	}
}

// Run processes all venues and returns the collected results. Cancellation
// is cooperative: the dispatch loop stops handing out venues once the
// context is done, and a venue interrupted mid-pipeline is dropped rather
// than emitted partially. Results for completed venues are always kept.
func (r *Runner) Run(ctx context.Context, venues []crawler.Venue) []crawler.ScrapeResult {
	runID := uuid.NewString()
	logger := r.logger.With(zap.String("run_id", runID))
	logger.Info("starting scrape run",
		zap.Int("venues", len(venues)), zap.Int("workers", r.workers))

	jobs := make(chan crawler.Venue)
	var (
		mu      sync.Mutex
		results []crawler.ScrapeResult
	)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for venue := range jobs {
				result, err := r.processor.Process(ctx, venue)
				if err != nil {
					logger.Debug("venue dropped",
						zap.String("venue", venue.Name), zap.Error(err))
					continue
				}
				mu.Lock()
				results = append(results, result)
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, venue := range venues {
		select {
		case <-ctx.Done():
			logger.Warn("scrape run cancelled", zap.Error(ctx.Err()))
			break dispatch
		case jobs <- venue:
		}
	}
	close(jobs)
	wg.Wait()

	logger.Info("scrape run finished", zap.Int("results", len(results)))
	return results
}
