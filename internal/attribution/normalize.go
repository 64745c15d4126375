// Package attribution infers which school and enrolment phase an ad set
// belongs to from nothing but its free-form name.
package attribution

import (
	"regexp"
	"strings"
)

// Brand is the token every ad set name may be prefixed with.
const Brand = "spark"

var (
	brandPrefix  = regexp.MustCompile(`(?i)^` + Brand + `\s+`)
	nonKeyChars  = regexp.MustCompile(`[^a-z0-9 \-]`)
	digitsOnly   = regexp.MustCompile(`^\d+$`)
	segmentSplit = regexp.MustCompile(`[|/,\-]`)
)

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stripBrand(s string) string {
	return strings.TrimSpace(brandPrefix.ReplaceAllString(s, ""))
}

// Normalize canonicalises an ad set or school name for comparison.
func Normalize(raw string) string {
	s := strings.ToLower(collapseSpaces(raw))
	s = stripBrand(s)
	s = collapseSpaces(nonKeyChars.ReplaceAllString(s, " "))
	// cleanup can expose another brand token ("spark! spark x")
	for {
		next := stripBrand(s)
		if next == s {
			return s
		}
		s = next
	}
}

func titleCase(s string) string {
	parts := strings.Fields(s)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, " ")
}
