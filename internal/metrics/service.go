package metrics

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/AngelCh415/spark-report/internal/models"
	"github.com/AngelCh415/spark-report/internal/store"
)

var (
	ErrNotReady      = errors.New("report not built yet")
	ErrSchoolUnknown = errors.New("unknown school")
	ErrPhaseUnknown  = errors.New("phase not available for school")
)

type Service struct{ st *store.ReportStore }

func NewService(st *store.ReportStore) *Service { return &Service{st: st} }
func norm(s string) string                       { return strings.ToLower(strings.TrimSpace(s)) }

func csvSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, p := range strings.Split(s, ",") {
		p = norm(p)
		if p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}

// Directory lists schools for the index page. Supported query params:
// q (substring of the label), phase (comma separated phase labels), limit, offset.
func (s *Service) Directory(v url.Values) ([]models.SchoolEntry, error) {
	if !s.st.Ready() {
		return nil, ErrNotReady
	}
	q := norm(v.Get("q"))
	phases := csvSet(v.Get("phase"))
	limit := atoiDef(v.Get("limit"), 0)
	offset := atoiDef(v.Get("offset"), 0)

	schools := s.st.Query(func(a models.SchoolAggregate) bool {
		if q != "" && !strings.Contains(norm(a.DisplayName), q) {
			return false
		}
		if len(phases) > 0 {
			if _, ok := phases[norm(a.PhaseLabel)]; !ok {
				return false
			}
		}
		return true
	})

	rows := make([]models.SchoolEntry, 0, len(schools))
	for _, a := range schools {
		rows = append(rows, models.SchoolEntry{
			Slug:        a.Slug,
			Label:       a.DisplayName,
			PhaseLabel:  a.PhaseLabel,
			ListMetrics: a.ListMetrics,
		})
	}
	limit, offset = clampLimitOffset(limit, offset, len(rows))
	return paginate(rows, limit, offset), nil
}

// School returns one school. A non-empty phase narrows PhaseData to that phase.
func (s *Service) School(slug, phase string) (models.SchoolAggregate, error) {
	if !s.st.Ready() {
		return models.SchoolAggregate{}, ErrNotReady
	}
	a, ok := s.st.School(strings.TrimSpace(slug))
	if !ok {
		return models.SchoolAggregate{}, ErrSchoolUnknown
	}
	if phase == "" {
		return a, nil
	}
	for _, p := range a.AvailablePhases {
		if norm(string(p)) == norm(phase) {
			a.PhaseData = map[models.Phase]models.PhaseMetrics{p: a.PhaseData[p]}
			return a, nil
		}
	}
	return models.SchoolAggregate{}, ErrPhaseUnknown
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	} // hard cap
	if offset > n {
		offset = n
	}
	return limit, offset
}
