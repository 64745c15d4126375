package metrics

import "github.com/AngelCh415/spark-report/internal/models"

// Totals computes whole-period paid social totals for both periods.
func Totals(current, previous []models.AdRow, opts ...Option) models.ChannelTotals {
	o := newOptions(opts)
	cur := compute(current, o.leadSubmissionType)
	prev := compute(previous, o.leadSubmissionType)
	return models.ChannelTotals{Current: cur, Previous: prev, YoY: CompareYoY(cur, prev)}
}
