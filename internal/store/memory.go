package store

import (
	"sync"
	"time"

	"github.com/AngelCh415/spark-report/internal/models"
)

// ReportStore holds the latest built report. A rebuild swaps the whole
// snapshot, readers never see a partially built report.
type ReportStore struct {
	mu      sync.RWMutex
	report  *models.Report
	bySlug  map[string]int
	builtAt time.Time
	builds  int
}

func NewReportStore() *ReportStore {
	return &ReportStore{bySlug: make(map[string]int)}
}

func (s *ReportStore) Put(r models.Report) {
	idx := make(map[string]int, len(r.Schools))
	for i, sch := range r.Schools {
		idx[sch.Slug] = i
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = &r
	s.bySlug = idx
	s.builtAt = r.GeneratedAt
	s.builds++
}

// Report returns the current snapshot. ok is false until the first Put.
func (s *ReportStore) Report() (models.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return models.Report{}, false
	}
	return *s.report, true
}

func (s *ReportStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report != nil
}

func (s *ReportStore) School(slug string) (models.SchoolAggregate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return models.SchoolAggregate{}, false
	}
	i, ok := s.bySlug[slug]
	if !ok {
		return models.SchoolAggregate{}, false
	}
	return s.report.Schools[i], true
}

// Query returns the schools accepted by f, in report order.
func (s *ReportStore) Query(f func(models.SchoolAggregate) bool) []models.SchoolAggregate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return nil
	}
	var out []models.SchoolAggregate
	for _, sch := range s.report.Schools {
		if f == nil || f(sch) {
			out = append(out, sch)
		}
	}
	return out
}

// BuiltAt reports when the current snapshot was generated and how many builds ran.
func (s *ReportStore) BuiltAt() (time.Time, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.builtAt, s.builds
}
