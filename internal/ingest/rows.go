package ingest

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/spark-report/internal/models"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006/01/02", "01-02-06", "1/2/2006"}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// asNumber coerces an export cell ("R1,234.50", " 12 ") to a number. Anything
// unparseable is 0.
func asNumber(s string) float64 {
	s = strings.TrimSpace(nonNumeric.ReplaceAllString(s, ""))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// sanitize clamps negative numbers to zero and drops a reporting period that
// ends before it starts. The aggregation core relies on both.
func sanitize(r models.AdRow) models.AdRow {
	r.CampaignName = strings.TrimSpace(r.CampaignName)
	r.AdSetName = strings.TrimSpace(r.AdSetName)
	r.ResultType = strings.TrimSpace(r.ResultType)
	r.Results = maxf(r.Results)
	r.CostPerResult = maxf(r.CostPerResult)
	r.AmountSpent = maxf(r.AmountSpent)
	r.Impressions = maxf(r.Impressions)
	r.Clicks = maxf(r.Clicks)
	r.Reach = maxf(r.Reach)
	if !r.PeriodStart.IsZero() && !r.PeriodEnd.IsZero() && r.PeriodEnd.Before(r.PeriodStart) {
		r.PeriodStart, r.PeriodEnd = time.Time{}, time.Time{}
	}
	return r
}

type rowsResp []struct {
	CampaignName  string  `json:"campaign_name"`
	AdSetName     string  `json:"ad_set_name"`
	ResultType    string  `json:"result_type"`
	Results       float64 `json:"results"`
	CostPerResult float64 `json:"cost_per_result"`
	AmountSpent   float64 `json:"amount_spent"`
	Impressions   float64 `json:"impressions"`
	Clicks        float64 `json:"clicks"`
	Reach         float64 `json:"reach"`
	PeriodStart   string  `json:"period_start"`
	PeriodEnd     string  `json:"period_end"`
}

// FetchRows reads a JSON array of ad rows from url.
func FetchRows(ctx context.Context, c HTTPClient, url string) ([]models.AdRow, error) {
	var resp rowsResp
	if err := GetJSONWithRetry(ctx, c, url, &resp); err != nil {
		return nil, fmt.Errorf("fetch rows %s: %w", url, err)
	}
	out := make([]models.AdRow, 0, len(resp))
	for _, r := range resp {
		out = append(out, sanitize(models.AdRow{
			CampaignName:  r.CampaignName,
			AdSetName:     r.AdSetName,
			ResultType:    r.ResultType,
			Results:       r.Results,
			CostPerResult: r.CostPerResult,
			AmountSpent:   r.AmountSpent,
			Impressions:   r.Impressions,
			Clicks:        r.Clicks,
			Reach:         r.Reach,
			PeriodStart:   parseDate(r.PeriodStart),
			PeriodEnd:     parseDate(r.PeriodEnd),
		}))
	}
	return out, nil
}

func maxf(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
