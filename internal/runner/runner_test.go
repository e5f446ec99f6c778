package runner

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/venuescout/venuescout/internal/crawler"
)

// fakeProcessor marks venues as hiring and fails once the context is done.
type fakeProcessor struct {
	calls atomic.Int32
}

func (p *fakeProcessor) Process(ctx context.Context, venue crawler.Venue) (crawler.ScrapeResult, error) {
	p.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return crawler.ScrapeResult{}, err
	}
	return crawler.ScrapeResult{Venue: venue, Hiring: true}, nil
}

func makeVenues(n int) []crawler.Venue {
	venues := make([]crawler.Venue, n)
	for i := range venues {
		venues[i] = crawler.Venue{
			ID:      string(rune('a' + i)),
			Name:    "Venue " + string(rune('A'+i)),
			Website: "https://venue.example",
		}
	}
	return venues
}

func TestRunnerProcessesAllVenues(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{}
	r := New(processor, 3, zap.NewNop())

	results := r.Run(context.Background(), makeVenues(7))

	require.Len(t, results, 7)
	require.EqualValues(t, 7, processor.calls.Load())

	seen := make(map[string]struct{})
	for _, result := range results {
		seen[result.Venue.ID] = struct{}{}
	}
	require.Len(t, seen, 7, "every venue appears exactly once")
}

func TestRunnerDropsCancelledVenues(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(&fakeProcessor{}, 2, zap.NewNop())
	results := r.Run(ctx, makeVenues(5))

	require.Empty(t, results, "venues interrupted mid-pipeline are dropped")
}

func TestRunnerNoVenues(t *testing.T) {
	t.Parallel()

	r := New(&fakeProcessor{}, 2, zap.NewNop())
	require.Empty(t, r.Run(context.Background(), nil))
}

func TestRunnerWorkerFloor(t *testing.T) {
	t.Parallel()

	r := New(&fakeProcessor{}, 0, zap.NewNop())
	require.Equal(t, 1, r.workers)

	results := r.Run(context.Background(), makeVenues(3))
	require.Len(t, results, 3)
}
