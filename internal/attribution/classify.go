package attribution

import (
	"github.com/AngelCh415/spark-report/internal/models"
)

// Classify resolves the school and phase for one ad set name. The first catalog
// entry found as a whole word wins, so longer names beat the shorter names
// they contain.
func Classify(adSetName string, catalog *Catalog) models.Classification {
	raw := collapseSpaces(adSetName)
	compare := " " + Normalize(raw) + " "

	matched := ""
	if catalog != nil {
		for _, e := range catalog.entries {
			if e.pattern.MatchString(compare) {
				matched = stripBrand(e.name)
				break
			}
		}
	}

	phase := DetectPhase(raw, matched)
	if matched == "" {
		switch phase {
		case models.PhasePrimary, models.PhaseHigh:
			return models.Classification{School: models.GeneralSchool, Phase: phase}
		default:
			return models.Classification{School: models.GeneralSchool, Phase: models.PhaseAll}
		}
	}
	return models.Classification{School: matched, Phase: phase}
}
