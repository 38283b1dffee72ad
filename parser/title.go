package parser

import (
	"regexp"
	"strings"
)

const (
	maxKeywordRunes   = 20
	minKeywordRunes   = 2
	matchPrefixRunes  = 10
	minPrefixForMatch = 3
)

var (
	gradeTagPattern   = regexp.MustCompile(`\[중고-[^\]]+\]`)
	bracketTagPattern = regexp.MustCompile(`\[[^\]]+\]`)
	subtitlePattern   = regexp.MustCompile(`[:：].*`)
	punctPattern      = regexp.MustCompile(`[()\[\]{}]`)
)

// NormalizeTitle turns a listing title into a shop search keyword: grade tags,
// bracketed annotations, subtitles and bracket punctuation are dropped and the
// result is capped at 20 runes.
func NormalizeTitle(title string) string {
	normalized := gradeTagPattern.ReplaceAllString(title, "")
	normalized = bracketTagPattern.ReplaceAllString(normalized, "")
	normalized = subtitlePattern.ReplaceAllString(normalized, "")
	normalized = punctPattern.ReplaceAllString(normalized, "")
	normalized = strings.TrimSpace(normalized)

	runes := []rune(normalized)
	if len(runes) < minKeywordRunes {
		return strings.TrimSpace(gradeTagPattern.ReplaceAllString(title, ""))
	}
	if len(runes) > maxKeywordRunes {
		return string(runes[:maxKeywordRunes])
	}
	return normalized
}

// IsTitleMatch reports whether a listing title refers to the searched title.
// Both sides are normalized and case-folded; they match when equal, when one
// contains the other, or when they share a prefix of min(10, shorter) runes of
// at least 3 runes.
func IsTitleMatch(listingTitle, searchTitle string) bool {
	left := strings.ToLower(NormalizeTitle(listingTitle))
	right := strings.ToLower(NormalizeTitle(searchTitle))
	if left == "" || right == "" {
		return false
	}
	if left == right {
		return true
	}
	if strings.Contains(left, right) || strings.Contains(right, left) {
		return true
	}

	l, r := []rune(left), []rune(right)
	n := min(matchPrefixRunes, len(l), len(r))
	if n < minPrefixForMatch {
		return false
	}
	return string(l[:n]) == string(r[:n])
}
