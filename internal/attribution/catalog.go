package attribution

import (
	"regexp"
	"sort"
	"strings"
)

var stopwords = map[string]struct{}{
	"all": {}, "lead": {}, "leads": {}, "submission": {}, "bb24": {},
	"campaign": {}, "adset": {}, "ad": {}, "set": {},
	"broad": {}, "retargeting": {}, "remarketing": {}, "lookalike": {},
	"messages": {}, "message": {}, "whatsapp": {},
	"traffic": {}, "awareness": {}, "conversion": {}, "conversions": {},
	"enrolment": {}, "enrollment": {}, "enrolments": {}, "enrollments": {},
}

var (
	brandPhrase   = regexp.MustCompile(`(?i)(?:^|\b)` + Brand + `\s+([a-z][a-z\s\-]{1,80})`)
	phraseEnd     = regexp.MustCompile(`[\-|/]`)
	reservedNames = regexp.MustCompile(`(?i)^(Primary|High|General)$`)
)

const minCandidateLen = 3

// Synthesis adds Add to the catalog whenever When was found but Add was not.
// It covers schools whose specific name never shows up on its own in ad set names.
type Synthesis struct {
	When string `yaml:"when"`
	Add  string `yaml:"add"`
}

// DefaultSyntheses lists the known naming gaps in the source exports.
var DefaultSyntheses = []Synthesis{
	{When: "Rivonia", Add: "Rivonia High"},
}

type candidateCounts struct {
	order  []string
	counts map[string]int
}

func (c *candidateCounts) add(name string) {
	if _, ok := c.counts[name]; !ok {
		c.order = append(c.order, name)
	}
	c.counts[name]++
}

func keepTokens(phrase string) []string {
	var out []string
	for _, tok := range strings.Split(phrase, " ") {
		if tok == "" || digitsOnly.MatchString(tok) {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// BuildCatalog proposes candidate school names from a corpus of ad set names.
// The result has no duplicates and is ordered longest first. When no exceptions
// are passed DefaultSyntheses apply.
func BuildCatalog(names []string, exceptions ...Synthesis) []string {
	if len(exceptions) == 0 {
		exceptions = DefaultSyntheses
	}
	cands := &candidateCounts{counts: make(map[string]int)}

	for _, name := range names {
		normalized := Normalize(name)

		for _, m := range brandPhrase.FindAllStringSubmatch(normalized, -1) {
			phrase := collapseSpaces(phraseEnd.Split(m[1], 2)[0])
			tokens := keepTokens(phrase)
			if len(tokens) == 0 {
				continue
			}
			if len(tokens) > 3 {
				tokens = tokens[:3]
			}
			cands.add(titleCase(strings.Join(tokens, " ")))
		}

		for _, segment := range segmentSplit.Split(normalized, -1) {
			segment = collapseSpaces(segment)
			if segment == "" {
				continue
			}
			tokens := keepTokens(stripBrand(segment))
			if len(tokens) < 1 || len(tokens) > 3 {
				continue
			}
			candidate := titleCase(strings.Join(tokens, " "))
			if reservedNames.MatchString(candidate) {
				continue
			}
			cands.add(candidate)
		}
	}

	kept := make([]string, 0, len(cands.order))
	present := make(map[string]bool, len(cands.order))
	for _, name := range cands.order {
		if cands.counts[name] >= 1 && len(name) >= minCandidateLen {
			kept = append(kept, name)
			present[name] = true
		}
	}
	for _, s := range exceptions {
		if present[s.When] && !present[s.Add] {
			kept = append(kept, s.Add)
			present[s.Add] = true
		}
	}
	return longestFirst(kept)
}

func longestFirst(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

type catalogEntry struct {
	name    string
	pattern *regexp.Regexp
}

// Catalog is an immutable, longest-first list of known school names ready for matching.
type Catalog struct {
	entries []catalogEntry
}

// NewCatalog deduplicates names, orders them longest first and precompiles
// a whole-word matcher for each.
func NewCatalog(names []string) *Catalog {
	ordered := longestFirst(names)
	c := &Catalog{entries: make([]catalogEntry, 0, len(ordered))}
	for _, n := range ordered {
		key := Normalize(n)
		if key == "" {
			continue
		}
		c.entries = append(c.entries, catalogEntry{
			name:    n,
			pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(key) + `\b`),
		})
	}
	return c
}

// Names returns the catalogued names in matching order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.name
	}
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
