package crawler

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ScoreThreshold is the minimum score a candidate link must reach to be
// probed.
const ScoreThreshold = 1.5

// ExtractJobLinks returns the links whose anchor text or href directly
// mentions a job keyword, resolved against baseURL. In-page anchors and
// mailto/tel/javascript links are skipped unless the keyword check rescues
// them. Order follows the document; duplicates are dropped by absolute URL.
func ExtractJobLinks(html, baseURL string) []string {
	if html == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var found []string
	seen := make(map[string]struct{})

	doc.Find("a").Each(func(_ int, anchor *goquery.Selection) {
		href := strings.TrimSpace(anchor.AttrOr("href", ""))
		if href == "" {
			return
		}
		hrefLower := strings.ToLower(href)
		if strings.HasPrefix(hrefLower, "mailto:") ||
			strings.HasPrefix(hrefLower, "tel:") ||
			strings.HasPrefix(hrefLower, "javascript:") {
			return
		}

		text := normalizeWhitespace(anchor.Text())
		textLower := strings.ToLower(text)

		hasKeyword := containsAny(textLower, jobPageKeywords) || containsAny(hrefLower, jobPageKeywords)
		if strings.HasPrefix(hrefLower, "#") && !hasKeyword {
			return
		}
		if !hasKeyword {
			return
		}

		absolute := resolveRef(baseURL, href)
		if absolute == "" {
			return
		}
		if _, dup := seen[absolute]; dup {
			return
		}
		seen[absolute] = struct{}{}
		found = append(found, absolute)
	})

	return found
}

// ExtractCandidates parses every anchor on the page, canonicalizes and
// deduplicates the targets, scores them, and returns the candidates at or
// above ScoreThreshold in descending score order. Ties keep document order.
func ExtractCandidates(html, baseURL string) []CandidateLink {
	if html == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	preselected := make(map[string]struct{})
	for _, link := range ExtractJobLinks(html, baseURL) {
		if canonical := CanonicalizeURL(link); canonical != "" {
			preselected[canonical] = struct{}{}
		}
	}

	baseHost := hostnameOf(baseURL)

	var candidates []CandidateLink
	seen := make(map[string]struct{})

	doc.Find("a").Each(func(_ int, anchor *goquery.Selection) {
		href := strings.TrimSpace(anchor.AttrOr("href", ""))
		if href == "" {
			return
		}
		canonical := CanonicalizeURL(resolveRef(baseURL, href))
		if canonical == "" {
			return
		}
		parsed, err := url.Parse(canonical)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return
		}
		if _, dup := seen[canonical]; dup {
			return
		}
		seen[canonical] = struct{}{}

		text := normalizeWhitespace(anchor.Text())
		score := ScoreCandidate(canonical, text, preselected, baseHost, baseURL)
		if score >= ScoreThreshold {
			candidates = append(candidates, CandidateLink{URL: canonical, Text: text, Score: score})
		}
	})

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// normalizeWhitespace collapses runs of whitespace into single spaces and
// trims the ends.
func normalizeWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
