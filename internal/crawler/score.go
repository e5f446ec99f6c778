package crawler

import (
	"math"
	"net/url"
	"strings"
)

// Image and document suffixes that can never be job pages.
var rejectedSuffixes = []string{".pdf", ".jpg", ".jpeg", ".png", ".gif", ".webp"}

// ScoreCandidate rates how likely a link leads to a job listings page. The
// weights are load-bearing: they were tuned together with the keyword tables
// and the probe threshold, and are not independently adjustable. The function
// is pure given the static tables plus its inputs.
func ScoreCandidate(rawURL, text string, preselected map[string]struct{}, baseHost, baseURL string) float64 {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return math.Inf(-1)
	}

	lowerURL := strings.ToLower(rawURL)
	lowerText := strings.ToLower(text)
	score := 0.0

	if _, ok := preselected[rawURL]; ok {
		score += 1.5
	}

	keywordInText := containsAny(lowerText, jobPageKeywords)
	keywordInURL := containsAny(lowerURL, jobPageKeywords)
	if keywordInText {
		score += 2.5
	}
	if keywordInURL {
		score += 1.5
	}

	if host := strings.ToLower(parsed.Hostname()); host != "" {
		switch {
		case hasAnyPrefix(host, jobSubdomainPrefixes):
			score += 5.0
		case containsAny(host, vendorHostFragments):
			score += 3.0
		case baseHost != "" && host != strings.ToLower(baseHost):
			score -= 1.0
		}
	}

	// Boilerplate navigation penalty, suppressed when a job keyword is
	// present anywhere in the same text or URL.
	keywordAnywhere := keywordInText || keywordInURL
	if containsAny(lowerText, navigationBlocklist) && !keywordAnywhere {
		score -= 2.5
	}
	if containsAny(lowerURL, navigationBlocklist) && !keywordAnywhere {
		score -= 2.5
	}

	// "Meet the team" pages masquerade as hiring pages.
	if strings.Contains(lowerText, "team") || strings.Contains(lowerURL, "/team") {
		if !containsAny(lowerText, teamContextIndicators) && !containsAny(lowerURL, teamContextIndicators) {
			score -= 2.0
		}
	}

	if parsed.Fragment != "" {
		if !containsAny(strings.ToLower(parsed.Fragment), jobPageKeywords) {
			score -= 0.5
		}
	}

	if lowerURL == strings.ToLower(baseURL) {
		score -= 1.0
	}

	for _, suffix := range rejectedSuffixes {
		if strings.HasSuffix(lowerURL, suffix) {
			return math.Inf(-1)
		}
	}

	return score
}

func hasAnyPrefix(value string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}
