// Package crawler implements the crawl-and-classify pipeline: polite
// fetching, robots enforcement, candidate link ranking, and hiring signal
// detection.
package crawler

import "time"

// Venue is a discovered service-sector location with a website to inspect.
// Immutable once produced by the discovery collaborator.
type Venue struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Website  string  `json:"website"`
}

// FetchOutcome describes the result of one fetch attempt sequence. All
// failure modes are encoded here; Fetch never returns a Go error to callers.
type FetchOutcome struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        string
	Error       string
}

// OK reports whether the fetch completed an HTTP exchange.
func (o FetchOutcome) OK() bool { return o.Error == "" }

// CandidateLink is a homepage link scored as a plausible path to a job page.
// Ephemeral; recomputed on every homepage scan.
type CandidateLink struct {
	URL   string
	Text  string
	Score float64
}

// Classification is the verdict of the hiring classifier for one document.
type Classification struct {
	Hiring  bool
	Keyword string
	Snippet string
}

// ScrapeResult is the terminal record produced once per venue per pass.
type ScrapeResult struct {
	Venue           Venue     `json:"venue"`
	JobPageURL      string    `json:"job_page_url"`
	Hiring          bool      `json:"hiring"`
	EvidenceSnippet string    `json:"evidence_snippet"`
	MatchedKeyword  string    `json:"matched_keyword"`
	HTTPStatus      int       `json:"http_status"`
	LastChecked     time.Time `json:"last_checked_utc"`
}
