package models

import (
	"fmt"
	"strings"
)

// QualityGrade orders used-copy conditions; a lower value is a better condition.
type QualityGrade int

const (
	GradeBest QualityGrade = 1
	GradeGood QualityGrade = 2
	GradeFair QualityGrade = 3
	GradePoor QualityGrade = 4
)

var gradeNames = map[QualityGrade]string{
	GradeBest: "BEST",
	GradeGood: "GOOD",
	GradeFair: "FAIR",
	GradePoor: "POOR",
}

// gradeAliases maps enum names and the origin's condition labels to grades.
var gradeAliases = map[string]QualityGrade{
	"best": GradeBest,
	"good": GradeGood,
	"fair": GradeFair,
	"poor": GradePoor,
	"최상":   GradeBest,
	"상":    GradeGood,
	"중":    GradeFair,
	"하":    GradePoor,
}

// IsAtLeast reports whether g satisfies the minimum grade min.
func (g QualityGrade) IsAtLeast(min QualityGrade) bool {
	return g.Level() <= min.Level()
}

// Level returns the numeric level, treating the zero value as FAIR.
func (g QualityGrade) Level() int {
	if g == 0 {
		return int(GradeFair)
	}
	return int(g)
}

func (g QualityGrade) String() string {
	if name, ok := gradeNames[g]; ok {
		return name
	}
	return fmt.Sprintf("QualityGrade(%d)", int(g))
}

// ParseQualityGrade accepts enum names (any case) and the origin's labels.
// An empty string yields FAIR.
func ParseQualityGrade(raw string) (QualityGrade, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return GradeFair, nil
	}
	if g, ok := gradeAliases[normalized]; ok {
		return g, nil
	}
	return 0, fmt.Errorf("unknown quality grade %q", raw)
}

func (g QualityGrade) MarshalText() ([]byte, error) {
	if g == 0 {
		return []byte(GradeFair.String()), nil
	}
	if _, ok := gradeNames[g]; !ok {
		return nil, fmt.Errorf("invalid quality grade %d", int(g))
	}
	return []byte(g.String()), nil
}

func (g *QualityGrade) UnmarshalText(text []byte) error {
	parsed, err := ParseQualityGrade(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
