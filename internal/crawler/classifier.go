package crawler

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// snippetRadius bounds evidence snippets to roughly one sentence of context.
const snippetRadius = 200

// Classify inspects raw HTML for hiring signals. Strong keywords are trusted
// outright; weak keywords require local context validation and are skipped
// entirely when the page carries false-positive context (cookie banners,
// German verb forms of "stellen", menus). When no keyword matches, the raw
// markup is scanned for embedded ATS vendor tokens.
func Classify(rawHTML string) Classification {
	if rawHTML == "" {
		return Classification{}
	}

	text := visibleText(rawHTML)
	normalized := normalizeWhitespace(text)
	lowered := strings.ToLower(normalized)

	// "Meet the team" pages look like hiring pages structurally but are
	// not, unless a strong application phrase appears as well.
	if containsAny(lowered, teamPageIndicators) && !containsAny(lowered, strongJobSignals) {
		return Classification{}
	}

	falsePositiveContext := false
	for _, pattern := range falsePositivePatterns {
		if pattern.MatchString(lowered) {
			falsePositiveContext = true
			break
		}
	}

	loweredRunes := []rune(lowered)
	normalizedRunes := []rune(normalized)

	for _, keyword := range strongKeywords {
		if pos := runeIndex(lowered, keyword); pos >= 0 {
			return Classification{
				Hiring:  true,
				Keyword: keyword,
				Snippet: makeSnippet(normalizedRunes, pos, utf8.RuneCountInString(keyword)),
			}
		}
	}

	if !falsePositiveContext {
		for _, keyword := range weakKeywords {
			pos := runeIndex(lowered, keyword)
			if pos < 0 {
				continue
			}
			if !validJobContext(normalizedRunes, loweredRunes, pos, keyword) {
				continue
			}
			return Classification{
				Hiring:  true,
				Keyword: keyword,
				Snippet: makeSnippet(normalizedRunes, pos, utf8.RuneCountInString(keyword)),
			}
		}
	}

	loweredHTML := strings.ToLower(rawHTML)
	for _, vendor := range vendorKeywords {
		if strings.Contains(loweredHTML, vendor) {
			return Classification{
				Hiring:  true,
				Keyword: vendor,
				Snippet: "Detected vendor keyword '" + vendor + "'",
			}
		}
	}

	return Classification{}
}

// validJobContext inspects a ±50 rune window around a weak keyword match.
// False-positive indicators reject the match; for "stellen" the noun sense
// is required (compound or capitalized occurrence); otherwise nearby job
// words accept it and the default is to trust it.
func validJobContext(normalized, lowered []rune, pos int, keyword string) bool {
	keywordLen := utf8.RuneCountInString(keyword)
	start := pos - 50
	if start < 0 {
		start = 0
	}
	end := pos + keywordLen + 50
	if end > len(lowered) {
		end = len(lowered)
	}
	window := string(lowered[start:end])

	for _, indicator := range contextFalsePositives {
		if strings.Contains(window, indicator) {
			return false
		}
	}

	if keyword == "stellen" {
		original := string(normalized[start:end])
		if strings.Contains(strings.ToLower(original), "stellenangebote") {
			return true
		}
		// Capitalized "Stellen" is the noun (= positions); lowercase is
		// almost always the verb (= to ask/provide).
		return strings.Contains(original, "Stellen")
	}

	for _, indicator := range contextPositives {
		if indicator == keyword {
			continue
		}
		if strings.Contains(window, indicator) {
			return true
		}
	}

	return true
}

// makeSnippet builds a whitespace-collapsed evidence snippet of at most
// snippetRadius runes centered on the match, ellipsized when truncated.
func makeSnippet(text []rune, pos, matchLen int) string {
	begin := pos - snippetRadius/2
	if begin < 0 {
		begin = 0
	}
	end := pos + matchLen + snippetRadius/2
	if end > len(text) {
		end = len(text)
	}
	snippet := normalizeWhitespace(string(text[begin:end]))
	runes := []rune(snippet)
	if len(runes) > snippetRadius {
		snippet = strings.TrimRight(string(runes[:snippetRadius-1]), " ") + "…"
	}
	return snippet
}

// runeIndex returns the rune offset of the first occurrence of needle, or -1.
func runeIndex(haystack, needle string) int {
	byteIdx := strings.Index(haystack, needle)
	if byteIdx < 0 {
		return -1
	}
	return utf8.RuneCountInString(haystack[:byteIdx])
}

// visibleText walks the parsed document and joins text nodes with spaces,
// skipping script, style, and noscript subtrees.
func visibleText(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				b.WriteString(trimmed)
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range doc.Nodes {
		walk(node)
	}
	return strings.TrimSpace(b.String())
}
