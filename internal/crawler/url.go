package crawler

import (
	"net/url"
	"strings"
)

// SanitizeURL strips ASCII control characters and surrounding whitespace and
// replaces literal spaces with %20. Idempotent.
func SanitizeURL(raw string) string {
	if raw == "" {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c <= 0x1f || c == 0x7f {
			continue
		}
		b.WriteByte(c)
	}
	cleaned := strings.TrimSpace(b.String())
	if strings.Contains(cleaned, " ") {
		cleaned = strings.ReplaceAll(cleaned, " ", "%20")
	}
	return cleaned
}

// CanonicalizeURL normalizes a URL for use as a deduplication key: the
// fragment is removed and a trailing slash is stripped from non-root paths.
// Returns "" when the URL lacks a scheme or host.
func CanonicalizeURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	stripped := *parsed
	stripped.Fragment = ""
	cleaned := stripped.String()
	if parsed.Path != "" && parsed.Path != "/" {
		cleaned = strings.TrimRight(cleaned, "/")
	}
	return cleaned
}

// originOf returns scheme://host for a parsed URL, or "" when either part is
// missing. Origin is the unit robots.txt rules apply to.
func originOf(parsed *url.URL) string {
	if parsed == nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// resolveRef resolves href against base, mirroring browser behavior. Returns
// "" when either side fails to parse.
func resolveRef(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

// hostnameOf returns the lowercase hostname of a raw URL, or "".
func hostnameOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// FallbackURLs expands the well-known job path guesses against both the site
// root and the resolved base path, canonicalized, deduplicated, and with the
// base itself excluded. Order is stable: root guess then relative guess per
// path.
func FallbackURLs(baseURL string) []string {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil
	}

	root := parsed.Scheme + "://" + parsed.Host
	baseWithSlash := baseURL
	if !strings.HasSuffix(baseWithSlash, "/") {
		baseWithSlash += "/"
	}
	baseCanonical := CanonicalizeURL(baseURL)

	seen := make(map[string]struct{})
	ordered := make([]string, 0, 2*len(fallbackPaths))
	add := func(candidate string) {
		canonical := CanonicalizeURL(candidate)
		if canonical == "" || canonical == baseCanonical {
			return
		}
		if _, dup := seen[canonical]; dup {
			return
		}
		seen[canonical] = struct{}{}
		ordered = append(ordered, canonical)
	}

	for _, p := range fallbackPaths {
		rel := strings.TrimPrefix(p, "/")
		add(resolveRef(root+"/", rel))
		add(resolveRef(baseWithSlash, rel))
	}
	return ordered
}
