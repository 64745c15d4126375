package attribution

import (
	"regexp"
	"strings"

	"github.com/AngelCh415/spark-report/internal/models"
)

var (
	primaryWord = regexp.MustCompile(`(?i)\bprimary\b`)
	highWord    = regexp.MustCompile(`(?i)\bhigh\b`)

	primaryGrades = regexp.MustCompile(`(?i)\br\s*[-–]\s*1\b|\br\s*to\s*1\b|\br1\b|\bgr\s*r\b|\bgrade\s*r\b|\bgr\s*[1-7]\b|\bgrade\s*[1-7]\b|\br\s*[-–]\s*7\b|\b1\s*[-–]\s*7\b`)
	highGrades    = regexp.MustCompile(`(?i)\b8\s*[-–]\s*12\b|\bgr\s*(8|9|10|11|12)\b|\bgrade\s*(8|9|10|11|12)\b`)
)

// phaseRule is one step of the phase chain. Rules are evaluated in order and
// the first match decides.
type phaseRule struct {
	Name  string
	Match func(name, school string) bool
	Phase models.Phase
}

var phaseRules = []phaseRule{
	{"primary-word", func(n, _ string) bool { return primaryWord.MatchString(n) }, models.PhasePrimary},
	{"high-word", func(n, _ string) bool { return highWord.MatchString(n) }, models.PhaseHigh},
	{"primary-grades", func(n, _ string) bool { return primaryGrades.MatchString(n) }, models.PhasePrimary},
	{"high-grades", func(n, _ string) bool { return highGrades.MatchString(n) }, models.PhaseHigh},
	{"high-school-name", func(_, s string) bool { return s != "" && highWord.MatchString(s) }, models.PhaseHigh},
}

// PhaseRules returns the rule names in evaluation order.
func PhaseRules() []string {
	out := make([]string, 0, len(phaseRules)+1)
	for _, r := range phaseRules {
		out = append(out, r.Name)
	}
	return append(out, "default-primary")
}

// DetectPhase classifies an ad set name as Primary or High. matchedSchool may be
// empty when no school was recognised. It never returns PhaseAll.
func DetectPhase(name, matchedSchool string) models.Phase {
	n := strings.ToLower(name)
	for _, r := range phaseRules {
		if r.Match(n, matchedSchool) {
			return r.Phase
		}
	}
	return models.PhasePrimary
}
