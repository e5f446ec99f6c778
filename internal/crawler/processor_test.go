package crawler

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeFetcher serves canned outcomes and records every requested URL.
// Unknown URLs return a 404 outcome.
type fakeFetcher struct {
	mu       sync.Mutex
	outcomes map[string]FetchOutcome
	requests []string
}

func newFakeFetcher(outcomes map[string]FetchOutcome) *fakeFetcher {
	return &fakeFetcher{outcomes: outcomes}
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) FetchOutcome {
	f.mu.Lock()
	f.requests = append(f.requests, rawURL)
	f.mu.Unlock()

	if outcome, ok := f.outcomes[rawURL]; ok {
		return outcome
	}
	return FetchOutcome{URL: rawURL, FinalURL: rawURL, StatusCode: http.StatusNotFound}
}

func (f *fakeFetcher) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func htmlOutcome(url, body string) FetchOutcome {
	return FetchOutcome{
		URL:         url,
		FinalURL:    url,
		StatusCode:  http.StatusOK,
		ContentType: "text/html; charset=utf-8",
		Body:        body,
	}
}

func testVenue() Venue {
	return Venue{
		ID:       "node/1",
		Name:     "Café Beispiel",
		Category: "cafe",
		Website:  "https://cafe.example",
	}
}

func TestProcessFindsJobPageViaCandidateLink(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]FetchOutcome{
		"https://cafe.example": htmlOutcome("https://cafe.example",
			`<html><body><a href="/jobs">Karriere</a><p>Willkommen</p></body></html>`),
		"https://cafe.example/jobs": htmlOutcome("https://cafe.example/jobs",
			`<html><body><p>Wir suchen Mitarbeiter. Jetzt bewerben!</p></body></html>`),
	})
	p := NewProcessor(fetcher, 12, zap.NewNop())

	result, err := p.Process(context.Background(), testVenue())
	require.NoError(t, err)
	require.True(t, result.Hiring, "expected hiring, got %+v", result)
	require.Equal(t, "https://cafe.example/jobs", result.JobPageURL)
	require.Equal(t, "bewerben", result.MatchedKeyword)
	require.Equal(t, http.StatusOK, result.HTTPStatus)
	require.False(t, result.LastChecked.IsZero(), "expected last checked timestamp")
}

func TestProcessHomepageFetchError(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]FetchOutcome{
		"https://cafe.example": {URL: "https://cafe.example", Error: "connection refused"},
	})
	p := NewProcessor(fetcher, 12, zap.NewNop())

	result, err := p.Process(context.Background(), testVenue())
	require.NoError(t, err)
	require.False(t, result.Hiring)
	require.Equal(t, "Error fetching homepage: connection refused", result.EvidenceSnippet)
	require.Equal(t, 1, fetcher.requestCount(), "no further requests after homepage failure")
}

func TestProcessFallbackPathsProbedOnHomepageSignal(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]FetchOutcome{
		"https://cafe.example": htmlOutcome("https://cafe.example",
			`<html><body><p>Wir haben offene Stellen!</p></body></html>`),
		"https://cafe.example/jobs": htmlOutcome("https://cafe.example/jobs",
			`<html><body><h1>Stellenangebote</h1></body></html>`),
	})
	p := NewProcessor(fetcher, 12, zap.NewNop())

	result, err := p.Process(context.Background(), testVenue())
	require.NoError(t, err)
	require.True(t, result.Hiring, "expected hiring via fallback probe, got %+v", result)
	require.Equal(t, "https://cafe.example/jobs", result.JobPageURL)
	require.Equal(t, "stellenangebote", result.MatchedKeyword)
	// homepage plus the first fallback probe only
	require.Equal(t, 2, fetcher.requestCount())
}

func TestProcessNoFallbacksWithoutAnySignal(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]FetchOutcome{
		"https://cafe.example": htmlOutcome("https://cafe.example",
			`<html><body><p>Heute Ruhetag.</p></body></html>`),
	})
	p := NewProcessor(fetcher, 12, zap.NewNop())

	result, err := p.Process(context.Background(), testVenue())
	require.NoError(t, err)
	require.False(t, result.Hiring)
	require.Equal(t, 1, fetcher.requestCount(), "quiet homepage must not trigger path guessing")
}

func TestProcessHomepageOnlySignal(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]FetchOutcome{
		"https://cafe.example": htmlOutcome("https://cafe.example",
			`<html><body><p>Wir sind am hiring, schreib uns!</p></body></html>`),
	})
	p := NewProcessor(fetcher, 12, zap.NewNop())

	result, err := p.Process(context.Background(), testVenue())
	require.NoError(t, err)
	require.True(t, result.Hiring, "expected homepage-only hiring signal, got %+v", result)
	require.Equal(t, "https://cafe.example", result.JobPageURL, "job page falls back to the homepage")
	require.Equal(t, "hiring", result.MatchedKeyword)
}

func TestProcessVendorTokenNeedsVendorLink(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]FetchOutcome{
		"https://cafe.example": htmlOutcome("https://cafe.example",
			`<html><head><script src="https://widget.personio.de/embed.js"></script></head>`+
				`<body><p>Willkommen</p></body></html>`),
	})
	p := NewProcessor(fetcher, 12, zap.NewNop())

	result, err := p.Process(context.Background(), testVenue())
	require.NoError(t, err)
	require.False(t, result.Hiring, "vendor token without a vendor link must not count: %+v", result)
}

func TestProcessVendorTokenWithVendorLink(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]FetchOutcome{
		"https://cafe.example": htmlOutcome("https://cafe.example",
			`<html><head><script src="https://widget.personio.de/embed.js"></script></head>`+
				`<body><a href="https://cafe.jobs.personio.de/">Wir stellen ein (personio)</a></body></html>`),
	})
	p := NewProcessor(fetcher, 12, zap.NewNop())

	result, err := p.Process(context.Background(), testVenue())
	require.NoError(t, err)
	require.True(t, result.Hiring, "expected vendor-backed hiring signal, got %+v", result)
	require.Equal(t, "https://cafe.jobs.personio.de/", result.JobPageURL)
}

func TestProcessUsesFinalURLAfterRedirect(t *testing.T) {
	t.Parallel()

	home := htmlOutcome("https://www.cafe.example",
		`<html><body><a href="/karriere">Karriere</a></body></html>`)
	home.URL = "https://cafe.example"

	fetcher := newFakeFetcher(map[string]FetchOutcome{
		"https://cafe.example": home,
		"https://www.cafe.example/karriere": htmlOutcome("https://www.cafe.example/karriere",
			`<html><body><h1>Offene Stellen</h1></body></html>`),
	})
	p := NewProcessor(fetcher, 12, zap.NewNop())

	result, err := p.Process(context.Background(), testVenue())
	require.NoError(t, err)
	require.True(t, result.Hiring)
	require.Equal(t, "https://www.cafe.example/karriere", result.JobPageURL,
		"candidate links must resolve against the redirected base")
}

func TestProcessSkipsBrokenCandidates(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]FetchOutcome{
		"https://cafe.example": htmlOutcome("https://cafe.example",
			`<html><body><a href="/karriere">Karriere</a><a href="/jobs">Jobs</a></body></html>`),
		// first candidate is broken, second one carries the signal
		"https://cafe.example/karriere": {URL: "https://cafe.example/karriere", Error: "timeout"},
		"https://cafe.example/jobs": htmlOutcome("https://cafe.example/jobs",
			`<html><body>Jetzt bewerben</body></html>`),
	})
	p := NewProcessor(fetcher, 12, zap.NewNop())

	result, err := p.Process(context.Background(), testVenue())
	require.NoError(t, err)
	require.True(t, result.Hiring, "expected hiring from the second candidate, got %+v", result)
	require.Equal(t, "https://cafe.example/jobs", result.JobPageURL)
}

func TestProcessMaxJobLinksCap(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]FetchOutcome{
		"https://cafe.example": htmlOutcome("https://cafe.example",
			`<html><body>
<a href="/jobs-a">Jobs A</a>
<a href="/jobs-b">Jobs B</a>
<a href="/jobs-c">Jobs C</a>
</body></html>`),
	})
	p := NewProcessor(fetcher, 2, zap.NewNop())

	result, err := p.Process(context.Background(), testVenue())
	require.NoError(t, err)
	require.False(t, result.Hiring)
	// homepage + 2 capped candidates + up to 5 fallbacks
	require.Equal(t, 8, fetcher.requestCount())
}

func TestProcessCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := newFakeFetcher(nil)
	p := NewProcessor(fetcher, 12, zap.NewNop())

	_, err := p.Process(ctx, testVenue())
	require.Error(t, err)
}
