package crawler

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PageFetcher fetches a URL politely; the processor only depends on this
// seam so tests can substitute a double.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) FetchOutcome
}

// maxFallbackProbes limits well-known path guessing per venue.
const maxFallbackProbes = 5

// Processor drives one venue through the scrape pipeline: fetch homepage,
// extract and rank candidate links, probe candidates then fallback paths,
// and resolve a homepage-only signal. Steps within a venue are sequential;
// the first accepted hiring classification wins.
type Processor struct {
	fetcher     PageFetcher
	maxJobLinks int
	logger      *zap.Logger
}

// NewProcessor builds a Processor. maxJobLinks <= 0 means no candidate cap.
func NewProcessor(fetcher PageFetcher, maxJobLinks int, logger *zap.Logger) *Processor {
	return &Processor{
		fetcher:     fetcher,
		maxJobLinks: maxJobLinks,
		logger:      logger,
	}
}

// probeHit captures an accepted hiring classification for a probed URL.
type probeHit struct {
	jobPageURL string
	keyword    string
	snippet    string
	status     int
}

// Process scrapes a single venue. The returned error is non-nil only when
// the context is cancelled mid-pipeline; no partial result is valid then.
func (p *Processor) Process(ctx context.Context, venue Venue) (ScrapeResult, error) {
	result := ScrapeResult{
		Venue:       venue,
		LastChecked: time.Now().UTC().Truncate(time.Second),
	}

	home := p.fetcher.Fetch(ctx, venue.Website)
	if err := ctx.Err(); err != nil {
		return ScrapeResult{}, err
	}
	if !home.OK() {
		result.EvidenceSnippet = "Error fetching homepage: " + home.Error
		venuesScraped.Inc()
		return result, nil
	}

	baseURL := home.FinalURL
	if baseURL == "" {
		baseURL = venue.Website
	}
	result.HTTPStatus = home.StatusCode

	candidates := ExtractCandidates(home.Body, baseURL)
	homeSignal := Classify(home.Body)

	maxCandidates := len(candidates)
	if p.maxJobLinks > 0 && maxCandidates > p.maxJobLinks {
		maxCandidates = p.maxJobLinks
	}

	tried := make(map[string]struct{})
	var hit *probeHit

	for _, candidate := range candidates[:maxCandidates] {
		canonical := CanonicalizeURL(candidate.URL)
		if canonical == "" {
			canonical = candidate.URL
		}
		if _, done := tried[canonical]; done {
			continue
		}
		tried[canonical] = struct{}{}

		var err error
		hit, err = p.probe(ctx, candidate.URL)
		if err != nil {
			return ScrapeResult{}, err
		}
		if hit != nil {
			break
		}
	}

	// Path guessing is only worth the requests when the site showed some
	// hiring-related surface at all.
	if hit == nil && (homeSignal.Hiring || len(candidates) > 0) {
		fallbacks := FallbackURLs(baseURL)
		if len(fallbacks) > maxFallbackProbes {
			fallbacks = fallbacks[:maxFallbackProbes]
		}
		for _, fallback := range fallbacks {
			if _, done := tried[fallback]; done {
				continue
			}
			tried[fallback] = struct{}{}

			var err error
			hit, err = p.probe(ctx, fallback)
			if err != nil {
				return ScrapeResult{}, err
			}
			if hit != nil {
				break
			}
		}
	}

	if hit != nil {
		result.Hiring = true
		result.JobPageURL = hit.jobPageURL
		result.MatchedKeyword = hit.keyword
		result.EvidenceSnippet = hit.snippet
		if hit.status != 0 {
			result.HTTPStatus = hit.status
		}
	} else if homeSignal.Hiring {
		p.resolveHomepageSignal(&result, homeSignal, home.Body, baseURL)
	}

	venuesScraped.Inc()
	if result.Hiring {
		hiringFound.Inc()
	}
	return result, nil
}

// probe fetches one candidate or fallback URL and classifies the body.
// Fetch errors and HTTP statuses >= 400 skip the URL without failing the
// venue. A meaningful fragment on the probed URL is carried into the
// reported job page URL.
func (p *Processor) probe(ctx context.Context, rawURL string) (*probeHit, error) {
	outcome := p.fetcher.Fetch(ctx, rawURL)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !outcome.OK() {
		p.logger.Debug("candidate fetch failed",
			zap.String("url", rawURL), zap.String("error", outcome.Error))
		return nil, nil
	}
	if outcome.StatusCode >= 400 {
		return nil, nil
	}

	detection := Classify(outcome.Body)
	if !detection.Hiring {
		return nil, nil
	}

	resolved := outcome.FinalURL
	if resolved == "" {
		resolved = rawURL
	}
	canonical := CanonicalizeURL(resolved)
	if canonical == "" {
		canonical = resolved
	}

	jobPage := canonical
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Fragment != "" {
		jobPage = canonical + "#" + parsed.Fragment
	}

	return &probeHit{
		jobPageURL: jobPage,
		keyword:    detection.Keyword,
		snippet:    detection.Snippet,
		status:     outcome.StatusCode,
	}, nil
}

// resolveHomepageSignal handles the case where only the homepage itself
// classified as hiring. A vendor-token match must be corroborated by an
// actual vendor-host link; a plain keyword falls back to the first keyword
// link or, failing that, the homepage.
func (p *Processor) resolveHomepageSignal(result *ScrapeResult, signal Classification, homepageHTML, baseURL string) {
	jobLinks := ExtractJobLinks(homepageHTML, baseURL)

	if isVendorKeyword(signal.Keyword) {
		var vendorLink string
		for _, link := range jobLinks {
			if containsAny(strings.ToLower(link), vendorKeywords) {
				vendorLink = link
				break
			}
		}
		if vendorLink == "" {
			// Vendor token in markup with no vendor link behind it is
			// almost always an analytics or widget artifact.
			return
		}
		result.Hiring = true
		result.MatchedKeyword = signal.Keyword
		result.EvidenceSnippet = signal.Snippet
		if canonical := CanonicalizeURL(vendorLink); canonical != "" {
			result.JobPageURL = canonical
		} else {
			result.JobPageURL = vendorLink
		}
		return
	}

	result.Hiring = true
	result.MatchedKeyword = signal.Keyword
	result.EvidenceSnippet = signal.Snippet

	if len(jobLinks) > 0 {
		first := jobLinks[0]
		if parsed, err := url.Parse(first); err == nil && parsed.Fragment != "" {
			// Keep the fragment; it often navigates to the posting.
			result.JobPageURL = first
		} else if canonical := CanonicalizeURL(first); canonical != "" {
			result.JobPageURL = canonical
		} else {
			result.JobPageURL = first
		}
		return
	}

	if canonical := CanonicalizeURL(baseURL); canonical != "" {
		result.JobPageURL = canonical
	} else {
		result.JobPageURL = baseURL
	}
}

func isVendorKeyword(keyword string) bool {
	lowered := strings.ToLower(keyword)
	for _, vendor := range vendorKeywords {
		if lowered == vendor {
			return true
		}
	}
	return false
}
