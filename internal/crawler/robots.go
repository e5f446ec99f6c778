package crawler

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// RobotsGate answers per-URL crawl permission questions, fetching each
// origin's robots.txt at most once per session. Policy:
//
//   - fetch failure or 404: unrestricted
//   - 401/403: fully disallowed
//   - >= 500: unrestricted, cached as unknown for the session
//   - otherwise: parsed rules evaluated for the configured agent
//
// The cache lives for the gate's lifetime and is never persisted.
type RobotsGate struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger

	mu      sync.Mutex
	origins map[string]*robotsEntry
}

// robotsEntry guards a single origin so concurrent callers await one fetch.
type robotsEntry struct {
	mu      sync.Mutex
	fetched bool
	data    *robotstxt.RobotsData // nil means no restriction known
}

// NewRobotsGate builds a gate with its own HTTP client; robots lookups do not
// consume the polite fetcher's pacing budget.
func NewRobotsGate(userAgent string, timeout time.Duration, logger *zap.Logger) *RobotsGate {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RobotsGate{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
		origins:   make(map[string]*robotsEntry),
	}
}

// Allowed reports whether rawURL may be crawled by the gate's user agent.
// URLs without a resolvable origin are allowed.
func (g *RobotsGate) Allowed(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	origin := originOf(parsed)
	if origin == "" {
		return true
	}

	entry := g.entry(origin)
	entry.mu.Lock()
	if !entry.fetched {
		entry.data = g.fetch(ctx, origin)
		entry.fetched = true
	}
	data := entry.data
	entry.mu.Unlock()

	if data == nil {
		return true
	}
	group := data.FindGroup(g.userAgent)
	if group == nil {
		return true
	}
	return group.Test(parsed.Path)
}

func (g *RobotsGate) entry(origin string) *robotsEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.origins[origin]
	if !ok {
		e = &robotsEntry{}
		g.origins[origin] = e
	}
	return e
}

// fetch retrieves and parses <origin>/robots.txt. A nil result means crawling
// is unrestricted for that origin.
func (g *RobotsGate) fetch(ctx context.Context, origin string) *robotstxt.RobotsData {
	robotsURL := origin + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Debug("robots fetch failed; allowing crawl",
			zap.String("origin", origin), zap.Error(err))
		return nil
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			g.logger.Debug("close robots body", zap.Error(cerr))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		g.logger.Debug("read robots body failed; allowing crawl",
			zap.String("origin", origin), zap.Error(err))
		return nil
	}

	// FromStatusAndBytes encodes the status policy: 401/403 parse to a
	// disallow-all rule set, 404 (and other 4xx) to unrestricted, and 5xx
	// returns an error which we cache as "unknown" for the session.
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		g.logger.Debug("robots unavailable; allowing crawl for session",
			zap.String("origin", origin),
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		g.logger.Info("robots restricted; disallowing origin",
			zap.String("origin", origin), zap.Int("status", resp.StatusCode))
	}
	return data
}
