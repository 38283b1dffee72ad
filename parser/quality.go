package parser

import (
	"regexp"
	"strings"

	"github.com/aluiziolira/bookbundle/models"
)

// Condition labels appear either as "[중고-상]" tags or as bare words. A bare
// label must be delimited by whitespace (including no-break spaces), the
// middle dot or punctuation, because "상" alone also occurs inside unrelated
// words such as "상품".
const (
	labelBefore = `(?:^|[\p{Z}\s\[(:/|,.·-])`
	labelAfter  = `(?:$|[\p{Z}\s\])/|,.:·-])`
)

var (
	bestLabel = "최상"
	goodLabel = regexp.MustCompile(`\[중고-상\]|` + labelBefore + `상` + labelAfter)
	fairLabel = regexp.MustCompile(`\[중고-중\]|` + labelBefore + `중` + labelAfter)
	poorLabel = regexp.MustCompile(`\[중고-하\]|` + labelBefore + `하` + labelAfter)
)

// ExtractQuality picks the best-precedence condition label found in a
// listing's text: best, then good, fair, poor. FAIR when nothing matches.
// "최상" counts anywhere; the single-syllable labels count only as a
// "[중고-X]" tag or as a delimited word, never as a substring.
func ExtractQuality(text string) models.QualityGrade {
	if strings.Contains(text, bestLabel) {
		return models.GradeBest
	}
	switch {
	case goodLabel.MatchString(text):
		return models.GradeGood
	case fairLabel.MatchString(text):
		return models.GradeFair
	case poorLabel.MatchString(text):
		return models.GradePoor
	}
	return models.GradeFair
}
