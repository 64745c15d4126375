package attribution

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/spark-report/internal/models"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  SPARK   Meyersdal - Grade R-7 ": "meyersdal - grade r-7",
		"Retargeting | Broad | Messages":   "retargeting broad messages",
		"spark":                            "spark",
		"Sparkle Academy":                  "sparkle academy",
		"!!!":                              "",
		"":                                 "",
		"Spark Rivonia/High, 2025":         "rivonia high 2025",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"SPARK Meyersdal - Grade R-7 - Leads",
		"spark! spark spark x",
		"Spark  spark\tRivonia",
		"Ärztekammer – Höhe ",
		"  İstanbul  PRIMARY  ",
		"Leads | SPARK Rivonia High - Gr 8",
		" spark x",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestBuildCatalogRivoniaSynthesis(t *testing.T) {
	names := []string{
		"SPARK Rivonia - Grade R-7 - Leads",
		"SPARK Rivonia - Open Day",
		"Leads | spark rivonia - gr 8",
	}
	cat := BuildCatalog(names)

	require.Contains(t, cat, "Rivonia")
	require.Contains(t, cat, "Rivonia High")
	assert.Less(t, indexOf(cat, "Rivonia High"), indexOf(cat, "Rivonia"))
}

func TestBuildCatalogCustomSynthesis(t *testing.T) {
	cat := BuildCatalog([]string{"SPARK Ferndale - Leads"}, Synthesis{When: "Ferndale", Add: "Ferndale High"})
	assert.Contains(t, cat, "Ferndale High")
	assert.NotContains(t, cat, "Rivonia High")
}

func TestBuildCatalogBrandAnchored(t *testing.T) {
	cat := BuildCatalog([]string{"Leads | SPARK Randpark Ridge Campaign - Broad"})
	assert.Contains(t, cat, "Randpark Ridge")
	for _, c := range cat {
		assert.NotContains(t, strings.ToLower(c), "campaign")
	}
}

func TestBuildCatalogFiltersStopwordsAndReserved(t *testing.T) {
	cat := BuildCatalog([]string{"Retargeting - Primary - 2025 - All Leads - ab"})
	assert.NotContains(t, cat, "Primary")
	assert.NotContains(t, cat, "Retargeting")
	assert.NotContains(t, cat, "2025")
	assert.NotContains(t, cat, "Ab")
}

func TestBuildCatalogLongestFirstAndUnique(t *testing.T) {
	names := []string{
		"SPARK Fourways - Leads",
		"SPARK Fourways High - Gr 8-12",
		"SPARK Fourways - Leads",
		"SPARK Centurion",
	}
	cat := BuildCatalog(names)

	seen := map[string]bool{}
	for _, c := range cat {
		assert.False(t, seen[c], "duplicate %q", c)
		seen[c] = true
	}
	for i, a := range cat {
		for j, b := range cat {
			if i != j && strings.Contains(b, a) && len(b) > len(a) {
				assert.Less(t, j, i, "%q must precede %q", b, a)
			}
		}
	}
}

func TestBuildCatalogEmpty(t *testing.T) {
	assert.Empty(t, BuildCatalog(nil))
}

func TestDetectPhase(t *testing.T) {
	cases := []struct {
		name   string
		school string
		want   models.Phase
	}{
		{"Meyersdal Primary - High intent", "", models.PhasePrimary},
		{"Meyersdal HIGH", "", models.PhaseHigh},
		{"Grade R-7 Leads", "", models.PhasePrimary},
		{"Gr 10 awareness", "", models.PhaseHigh},
		{"R – 1 intake", "", models.PhasePrimary},
		{"R to 1", "", models.PhasePrimary},
		{"8-12 remarketing", "", models.PhaseHigh},
		{"Grade 12", "", models.PhaseHigh},
		{"Gr 8 then 1-7", "", models.PhasePrimary},
		{"Open day", "Fourways High", models.PhaseHigh},
		{"Open day", "Highlands", models.PhasePrimary},
		{"Retargeting | Broad | Messages", "", models.PhasePrimary},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectPhase(tc.name, tc.school), "name %q school %q", tc.name, tc.school)
	}
}

func TestPhaseRulesOrder(t *testing.T) {
	assert.Equal(t, []string{
		"primary-word", "high-word", "primary-grades", "high-grades", "high-school-name", "default-primary",
	}, PhaseRules())
}

func TestClassifyMatchedSchool(t *testing.T) {
	cat := NewCatalog([]string{"Meyersdal"})
	got := Classify("SPARK Meyersdal - Grade R-7 - Leads", cat)
	assert.Equal(t, models.Classification{School: "Meyersdal", Phase: models.PhasePrimary}, got)
}

func TestClassifyFallsBackToGeneral(t *testing.T) {
	got := Classify("Retargeting | Broad | Messages", NewCatalog(nil))
	assert.Equal(t, models.Classification{School: models.GeneralSchool, Phase: models.PhasePrimary}, got)

	got = Classify("Gr 9 lookalike", NewCatalog([]string{"Meyersdal"}))
	assert.Equal(t, models.Classification{School: models.GeneralSchool, Phase: models.PhaseHigh}, got)

	got = Classify("anything", nil)
	assert.Equal(t, models.GeneralSchool, got.School)
}

func TestClassifyPrefersLongerName(t *testing.T) {
	cat := NewCatalog([]string{"Rivonia", "Rivonia High"})
	require.Equal(t, []string{"Rivonia High", "Rivonia"}, cat.Names())

	got := Classify("SPARK Rivonia High - Open Day", cat)
	assert.Equal(t, "Rivonia High", got.School)
	assert.Equal(t, models.PhaseHigh, got.Phase)

	got = Classify("SPARK Rivonia - Open Day", cat)
	assert.Equal(t, "Rivonia", got.School)
	assert.Equal(t, models.PhasePrimary, got.Phase)
}

func TestClassifyWholeWordOnly(t *testing.T) {
	cat := NewCatalog([]string{"Rand"})
	got := Classify("SPARK Randpark Ridge", cat)
	assert.Equal(t, models.GeneralSchool, got.School)
}

func TestClassifyStripsBrandFromDisplay(t *testing.T) {
	cat := NewCatalog([]string{"SPARK Ferndale"})
	got := Classify("Leads - spark ferndale - Gr 3", cat)
	assert.Equal(t, "Ferndale", got.School)
	assert.Equal(t, models.PhasePrimary, got.Phase)
}

func TestClassifyUsesSchoolNameForPhase(t *testing.T) {
	cat := NewCatalog([]string{"Fourways High"})
	got := Classify("SPARK Fourways High open day", cat)
	assert.Equal(t, models.PhaseHigh, got.Phase)
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}
