package crawler

import (
	"regexp"
	"strings"
)

// Heuristic tables for hiring detection and candidate scoring. These values
// are tuned against real venue sites (heavy German/English mix); changing
// them changes classification behavior, so they live in one place.

// strongKeywords are unambiguous hiring terms, checked first.
var strongKeywords = []string{
	"jobs",
	"karriere",
	"stellenangebote",
	"offene stellen",
	"career",
	"careers",
	"vacancy",
	"vacancies",
	"hiring",
	"bewerben",
	"bewerbung",
	"bewirb",
	"arbeiten bei",
	"mitarbeiten",
	"join our team",
	"teilzeit",
	"minijob",
	"aushilfe",
}

// weakKeywords are ambiguous and only trusted after context validation.
var weakKeywords = []string{
	"job",
	"stellen",
	"apply",
	"join",
	"team",
}

// falsePositivePatterns flag page-level contexts in which weak keywords are
// untrustworthy ("Stellen Sie" is the verb "to ask", cookie banners mention
// "accept", and so on).
var falsePositivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`stellen\s+sie`),
	regexp.MustCompile(`zur\s+verfügung\s+stellen`),
	regexp.MustCompile(`frage\s+stellen`),
	regexp.MustCompile(`cookie`),
	regexp.MustCompile(`datenschutz`),
	regexp.MustCompile(`impressum`),
	regexp.MustCompile(`reservier`),
	regexp.MustCompile(`kontaktformular`),
	regexp.MustCompile(`weihnachts`),
	regexp.MustCompile(`speisekarte`),
}

// vendorKeywords identify third-party applicant tracking systems embedded in
// raw page markup.
var vendorKeywords = []string{
	"personio",
	"greenhouse",
	"workable",
	"lever",
	"smartrecruiters",
	"join.com",
	"teamtailor",
	"recruitee",
	"ashby",
	"bamboohr",
	"jobylon",
	"workday",
	"icims",
}

// vendorHostFragments match ATS-hosted job board hostnames.
var vendorHostFragments = []string{
	"jobs.personio.de",
	"lever.co",
	"greenhouse.io",
	"smartrecruiters.com",
	"join.com",
	"workable.com",
	"recruitee.com",
	"teamtailor",
	"ashbyhq",
	"bamboohr.com",
	"jobylon",
	"icims.com",
	"hirehive",
	"workday",
}

// jobSubdomainPrefixes mark dedicated hiring subdomains.
var jobSubdomainPrefixes = []string{
	"jobs.",
	"careers.",
	"karriere.",
	"stellen.",
	"recruiting.",
	"hiring.",
}

// navigationBlocklist penalizes links that are almost always boilerplate
// navigation rather than hiring pages.
var navigationBlocklist = []string{
	"impressum",
	"datenschutz",
	"privacy",
	"agb",
	"newsletter",
	"kontakt",
	"contact",
	"reservierung",
	"reservation",
	"events",
	"news",
	"blog",
	"home",
	"startseite",
	"zurück",
	"menu",
	"menü",
	"gutscheine",
	"shop",
	"presse",
	"press",
}

// teamContextIndicators rescue "team" links that are genuinely about hiring.
var teamContextIndicators = []string{
	"join",
	"hiring",
	"career",
	"karriere",
	"bewerb",
	"stellen",
	"job",
}

// teamPageIndicators mark "meet the team" style pages that look like job
// pages structurally but are not.
var teamPageIndicators = []string{
	"meet the team",
	"meet our team",
	"unser team",
	"unser team kennenlernen",
	"about us",
	"über uns",
	"our story",
	"unsere geschichte",
}

// strongJobSignals are the phrases that rescue a team/about page.
var strongJobSignals = []string{
	"bewerb",
	"apply",
	"offene stellen",
	"stellenangebote",
	"hiring",
	"karriere",
}

// contextFalsePositives reject a weak keyword when found within its ±50-char
// window.
var contextFalsePositives = []string{
	"stellen sie",
	"zur verfügung stellen",
	"frage stellen",
	"cookie",
	"datenschutz",
	"impressum",
	"reservier",
	"kontaktformular",
	"weihnachts",
	"speisekarte",
	"menü",
	"menu",
}

// contextPositives accept a weak keyword when found within its window.
var contextPositives = []string{
	"job",
	"karriere",
	"bewerb",
	"mitarbeit",
	"aushilfe",
	"teilzeit",
	"minijob",
	"offene",
	"position",
	"stelle",
}

// fallbackPaths are well-known job page locations probed when link discovery
// comes up empty.
var fallbackPaths = []string{
	"/jobs",
	"/jobs/",
	"/karriere",
	"/karriere/",
	"/karriere/jobs",
	"/careers",
	"/careers/",
	"/stellen",
	"/stellenangebote",
	"/offene-stellen",
	"/join",
	"/join-us",
	"/join-our-team",
}

// jobPageKeywords is the combined strong+weak list used for link scoring.
var jobPageKeywords = append(append([]string{}, strongKeywords...), weakKeywords...)

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
