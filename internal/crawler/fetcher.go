package crawler

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// FetcherConfig carries the politeness and retry knobs for a crawl session.
type FetcherConfig struct {
	UserAgent       string
	AcceptLanguage  string
	Concurrency     int           // global in-flight cap
	PerHostMax      int           // in-flight cap per hostname
	HostMinInterval time.Duration // minimum spacing between requests to one host
	JitterMin       time.Duration
	JitterMax       time.Duration
	MaxAttempts     int
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	MaxPageBytes    int
}

const defaultAcceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

func (c *FetcherConfig) applyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 5
	}
	if c.PerHostMax <= 0 {
		c.PerHostMax = 2
	}
	if c.HostMinInterval <= 0 {
		c.HostMinInterval = time.Second
	}
	if c.JitterMin <= 0 {
		c.JitterMin = 200 * time.Millisecond
	}
	if c.JitterMax < c.JitterMin {
		c.JitterMax = 800 * time.Millisecond
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 20 * time.Second
	}
	if c.MaxPageBytes <= 0 {
		c.MaxPageBytes = 2 << 20
	}
}

// Fetcher performs bounded-concurrency HTTP fetches with per-host pacing,
// jitter, robots enforcement, and retry with backoff. Fetch never returns an
// error; every failure mode is encoded into the FetchOutcome.
type Fetcher struct {
	cfg    FetcherConfig
	robots *RobotsGate // nil disables robots enforcement
	logger *zap.Logger
	base   *colly.Collector

	global chan struct{}

	mu    sync.Mutex
	hosts map[string]*hostState

	// sleep and jitter are seams for tests.
	sleep  func(ctx context.Context, d time.Duration)
	jitter func(min, max time.Duration) time.Duration
}

// hostState tracks pacing for one hostname. lastRequest is written after an
// attempt sequence completes, while the host permit is still held.
type hostState struct {
	permits chan struct{}

	mu          sync.Mutex
	lastRequest time.Time
}

// NewFetcher builds a polite fetcher. robots may be nil.
func NewFetcher(cfg FetcherConfig, robots *RobotsGate, logger *zap.Logger) *Fetcher {
	cfg.applyDefaults()

	base := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
	)
	base.MaxBodySize = cfg.MaxPageBytes
	base.AllowURLRevisit = true
	// Error statuses are outcomes, not transport failures.
	base.ParseHTTPErrorResponse = true
	// Robots policy is enforced by RobotsGate before pacing starts.
	base.IgnoreRobotsTxt = true
	base.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          128,
		MaxIdleConnsPerHost:   cfg.PerHostMax * 2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.ConnectTimeout + cfg.ReadTimeout)

	return &Fetcher{
		cfg:    cfg,
		robots: robots,
		logger: logger,
		base:   base,
		global: make(chan struct{}, cfg.Concurrency),
		hosts:  make(map[string]*hostState),
		sleep:  sleepCtx,
		jitter: randomBetween,
	}
}

// Fetch retrieves url politely. The outcome's Error field is set to
// "disallowed_by_robots" on a robots denial or to the final transport error
// after retries are exhausted; HTTP error statuses are not fetch errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) FetchOutcome {
	target := SanitizeURL(rawURL)
	if target != rawURL {
		f.logger.Debug("sanitized url",
			zap.String("from", rawURL), zap.String("to", target))
	}

	select {
	case f.global <- struct{}{}:
	case <-ctx.Done():
		return FetchOutcome{URL: target, Error: ctx.Err().Error()}
	}
	defer func() { <-f.global }()

	host := hostnameOf(target)
	hs := f.hostState(host)
	select {
	case hs.permits <- struct{}{}:
	case <-ctx.Done():
		return FetchOutcome{URL: target, Error: ctx.Err().Error()}
	}
	defer func() { <-hs.permits }()

	if f.robots != nil && !f.robots.Allowed(ctx, target) {
		f.logger.Debug("robots disallows", zap.String("url", target))
		robotsDenials.Inc()
		return FetchOutcome{URL: target, Error: "disallowed_by_robots"}
	}

	f.waitTurn(ctx, hs)
	outcome := f.getWithRetries(ctx, target)

	hs.mu.Lock()
	hs.lastRequest = time.Now()
	hs.mu.Unlock()

	return outcome
}

func (f *Fetcher) hostState(host string) *hostState {
	f.mu.Lock()
	defer f.mu.Unlock()
	hs, ok := f.hosts[host]
	if !ok {
		hs = &hostState{permits: make(chan struct{}, f.cfg.PerHostMax)}
		f.hosts[host] = hs
	}
	return hs
}

// waitTurn enforces the per-host minimum interval plus a jitter sleep to
// avoid synchronized bursts across venues sharing a host.
func (f *Fetcher) waitTurn(ctx context.Context, hs *hostState) {
	hs.mu.Lock()
	last := hs.lastRequest
	hs.mu.Unlock()

	if !last.IsZero() {
		if remaining := f.cfg.HostMinInterval - time.Since(last); remaining > 0 {
			f.sleep(ctx, remaining)
		}
	}
	f.sleep(ctx, f.jitter(f.cfg.JitterMin, f.cfg.JitterMax))
}

// getWithRetries runs the attempt state machine: transport errors and 429s
// retry with backoff up to the attempt cap, any other status returns
// immediately.
func (f *Fetcher) getWithRetries(ctx context.Context, target string) FetchOutcome {
	var lastErr error
	for attempt := 1; attempt <= f.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return FetchOutcome{URL: target, Error: err.Error()}
		}
		requestsTotal.Inc()

		outcome, header, err := f.doGet(target)
		if err != nil {
			requestErrors.Inc()
			lastErr = err
			if attempt < f.cfg.MaxAttempts {
				f.sleep(ctx, f.backoff(attempt))
			}
			continue
		}

		if outcome.StatusCode == http.StatusTooManyRequests {
			rateLimitHits.Inc()
			if attempt < f.cfg.MaxAttempts {
				f.sleep(ctx, f.retryAfterDelay(header, attempt))
				continue
			}
			return outcome
		}
		return outcome
	}
	return FetchOutcome{URL: target, Error: lastErr.Error()}
}

// doGet performs a single GET through a cloned collector, following
// redirects. The response header is returned alongside so the retry loop can
// honor Retry-After.
func (f *Fetcher) doGet(target string) (FetchOutcome, http.Header, error) {
	// Clone drops callbacks, so request identity headers are re-registered
	// on every attempt.
	collector := f.base.Clone()

	var (
		outcome  FetchOutcome
		header   http.Header
		got      bool
		fetchErr error
	)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", defaultAcceptHeader)
		if f.cfg.AcceptLanguage != "" {
			r.Headers.Set("Accept-Language", f.cfg.AcceptLanguage)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		header = http.Header{}
		if r.Headers != nil {
			for k, v := range *r.Headers {
				header[k] = append([]string(nil), v...)
			}
		}
		outcome = buildOutcome(target, r)
		got = true
	})
	collector.OnError(func(_ *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown transport error")
		}
		fetchErr = err
	})

	if err := collector.Visit(target); err != nil {
		return FetchOutcome{}, nil, err
	}
	collector.Wait()

	switch {
	case got:
		return outcome, header, nil
	case fetchErr != nil:
		return FetchOutcome{}, nil, fetchErr
	default:
		return FetchOutcome{}, nil, errors.New("fetch produced no result")
	}
}

// buildOutcome encodes the body-decoding policy: the body is kept only for
// textual content types (or when no content type was sent).
func buildOutcome(target string, r *colly.Response) FetchOutcome {
	contentType := ""
	if r.Headers != nil {
		contentType = r.Headers.Get("Content-Type")
	}

	body := ""
	if isTextualContentType(contentType) {
		body = string(r.Body)
	}

	finalURL := target
	if r.Request != nil && r.Request.URL != nil {
		finalURL = r.Request.URL.String()
	}

	return FetchOutcome{
		URL:         target,
		FinalURL:    finalURL,
		StatusCode:  r.StatusCode,
		ContentType: contentType,
		Body:        body,
	}
}

func isTextualContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	lowered := strings.ToLower(contentType)
	for _, token := range []string{"text", "html", "xml", "json"} {
		if strings.Contains(lowered, token) {
			return true
		}
	}
	return false
}

// backoff computes the delay before the next attempt:
// min(2*attempt, 6) seconds plus uniform jitter in [0.2s, 0.8s].
func (f *Fetcher) backoff(attempt int) time.Duration {
	base := time.Duration(2*attempt) * time.Second
	if base > 6*time.Second {
		base = 6 * time.Second
	}
	return base + f.jitter(200*time.Millisecond, 800*time.Millisecond)
}

// retryAfterDelay honors a numeric Retry-After header, falling back to the
// standard backoff formula.
func (f *Fetcher) retryAfterDelay(header http.Header, attempt int) time.Duration {
	if header != nil {
		if raw := header.Get("Retry-After"); raw != "" {
			if seconds, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && seconds >= 0 {
				return time.Duration(seconds * float64(time.Second))
			}
		}
	}
	return f.backoff(attempt)
}

// sleepCtx pauses for d or until the context finishes.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// randomBetween draws a uniform duration in [min, max].
func randomBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	span := big.NewInt(int64(max - min))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return min + (max-min)/2
	}
	return min + time.Duration(n.Int64())
}
