package enrichment

import (
	"time"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"newshound/internal/core/normalize"
)

// AnchorRatioThreshold is the minimum fuzzy score for an anchor to count as
// present in article text. 80 admits minor misspellings and inflections
// while keeping unrelated names out
const AnchorRatioThreshold = 80

// DateWindowDays is how far an article may publish from the incident date in
// either direction. Coverage typically lands within three days
const DateWindowDays = 3

// MatchDate reports whether the article publication date falls within the
// window around the incident date. Either side missing means no match, an
// undated article can still pass validation only through the other anchors
func MatchDate(published, incident *time.Time) bool {
	if published == nil || incident == nil {
		return false
	}
	return daysApart(*published, *incident) <= DateWindowDays
}

// MatchAnchor reports whether needle occurs in haystack at partial ratio at
// or above the threshold. Partial ratio aligns the needle against haystack
// substrings, so a name buried in a paragraph scores as if compared alone.
// Both sides are case folded and width folded first
func MatchAnchor(haystack, needle string) bool {
	if haystack == "" || needle == "" {
		return false
	}
	return fuzzy.PartialRatio(normalize.Fold(needle), normalize.Fold(haystack)) >= AnchorRatioThreshold
}

// ValidateArticle scores one article against the incident anchors. Pass
// requires date and location, the victim name is advisory: nil when the
// baseline has no civilian name, informational otherwise
func ValidateArticle(s *State, a Article) ValidationResult {
	text := articleText(a)

	res := ValidationResult{Article: a}
	res.DateMatch = MatchDate(a.PublishedDate, s.IncidentDate)
	if s.Location != nil {
		res.LocationMatch = MatchAnchor(text, *s.Location)
	}
	if s.CivilianName != nil {
		m := MatchAnchor(text, *s.CivilianName)
		res.VictimNameMatch = &m
	}
	res.Passed = res.DateMatch && res.LocationMatch
	return res
}

// ValidateArticles scores every retrieved article independently. One bad
// article never blocks its batch
func ValidateArticles(s *State) []ValidationResult {
	out := make([]ValidationResult, 0, len(s.RetrievedArticles))
	for _, a := range s.RetrievedArticles {
		out = append(out, ValidateArticle(s, a))
	}
	return out
}

// AnyPassed reports whether at least one article survived validation
func AnyPassed(results []ValidationResult) bool {
	for _, r := range results {
		if r.Passed {
			return true
		}
	}
	return false
}

// PassedArticles returns the articles that survived validation, in result
// order
func PassedArticles(results []ValidationResult) []Article {
	out := make([]Article, 0, len(results))
	for _, r := range results {
		if r.Passed {
			out = append(out, r.Article)
		}
	}
	return out
}

// articleText picks the text used for anchor scoring. Full content when the
// provider returned any, title otherwise. Snippets are too lossy to anchor
// against
func articleText(a Article) string {
	if a.Content != nil && *a.Content != "" {
		return *a.Content
	}
	return a.Title
}

// daysApart measures whole calendar days between two instants, ignoring time
// of day and zone
func daysApart(a, b time.Time) int {
	d := int(civilDate(a).Sub(civilDate(b)).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d
}

func civilDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
