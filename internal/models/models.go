package models

import "time"

// AdRow is one row of a paid social export. Rows are never mutated after ingestion.
type AdRow struct {
	CampaignName  string    `json:"campaign_name"`
	AdSetName     string    `json:"ad_set_name"`
	ResultType    string    `json:"result_type"`
	Results       float64   `json:"results"`
	CostPerResult float64   `json:"cost_per_result"`
	AmountSpent   float64   `json:"amount_spent"`
	Impressions   float64   `json:"impressions"`
	Clicks        float64   `json:"clicks"`
	Reach         float64   `json:"reach"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
}

type Phase string

const (
	PhasePrimary Phase = "Primary"
	PhaseHigh    Phase = "High"
	PhaseAll     Phase = "All"
)

// GeneralSchool is the bucket for rows whose ad set names match no catalogued school.
const GeneralSchool = "General"

type Classification struct {
	School string `json:"school"`
	Phase  Phase  `json:"phase"`
}

type Metrics struct {
	LeadsTotal      float64 `json:"leads_total"`
	LeadSubmissions float64 `json:"lead_submissions"`
	Spend           float64 `json:"spend"`
	Clicks          float64 `json:"clicks"`
	Impressions     float64 `json:"impressions"`
	Reach           float64 `json:"reach"`
	CPL             float64 `json:"cpl"`
	CPC             float64 `json:"cpc"`
	CTR             float64 `json:"ctr"`
}

// YoYValue compares one metric across the current and comparison periods.
// Percent is nil when the previous value is not positive.
type YoYValue struct {
	Current        float64  `json:"current"`
	Previous       float64  `json:"previous"`
	Delta          float64  `json:"delta"`
	Percent        *float64 `json:"percent"`
	AbsoluteChange string   `json:"absolute_change"`
	PercentChange  string   `json:"percent_change"`
}

type YoYMetrics struct {
	LeadsTotal YoYValue `json:"leads_total"`
	Spend      YoYValue `json:"spend"`
	CPL        YoYValue `json:"cpl"`
	Clicks     YoYValue `json:"clicks"`
	CTR        YoYValue `json:"ctr"`
	CPC        YoYValue `json:"cpc"`
}

type Ranking struct {
	Name  string  `json:"name"`
	Leads float64 `json:"leads"`
	Spend float64 `json:"spend"`
	CPL   float64 `json:"cpl"`
}

type PhaseMetrics struct {
	Phase        Phase      `json:"phase"`
	Current      Metrics    `json:"current"`
	Previous     Metrics    `json:"previous"`
	YoY          YoYMetrics `json:"yoy"`
	TopCampaigns []Ranking  `json:"top_campaigns"`
	TopAdSets    []Ranking  `json:"top_ad_sets"`
}

type SchoolAggregate struct {
	Slug            string                 `json:"slug"`
	School          string                 `json:"school"`
	DisplayName     string                 `json:"display_name"`
	PhaseLabel      string                 `json:"phase_label"`
	AvailablePhases []Phase                `json:"available_phases"`
	PhaseData       map[Phase]PhaseMetrics `json:"phase_data"`
	ListMetrics     Metrics                `json:"list_metrics"`
}

// ChannelTotals are whole-period totals for the paid social channel.
type ChannelTotals struct {
	Current  Metrics    `json:"current"`
	Previous Metrics    `json:"previous"`
	YoY      YoYMetrics `json:"yoy"`
}

type SearchConsoleMetricRow struct {
	Label       string  `json:"label"`
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
	CTR         float64 `json:"ctr"`
	AvgPosition float64 `json:"avg_position"`
}

type SearchConsoleHeadline struct {
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
	AvgCTR      float64 `json:"avg_ctr"`
	AvgPosition float64 `json:"avg_position"`
}

type SearchConsole struct {
	Headline         SearchConsoleHeadline    `json:"headline"`
	TopQueries       []SearchConsoleMetricRow `json:"top_queries"`
	TopCountries     []SearchConsoleMetricRow `json:"top_countries"`
	Pages            []map[string]string      `json:"pages"`
	Devices          []map[string]string      `json:"devices"`
	SearchAppearance []map[string]string      `json:"search_appearance"`
	Filters          []map[string]string      `json:"filters"`
}

type ChannelMonth struct {
	Leads       float64 `json:"leads" yaml:"leads"`
	Spend       float64 `json:"spend" yaml:"spend"`
	Clicks      float64 `json:"clicks" yaml:"clicks"`
	Impressions float64 `json:"impressions" yaml:"impressions"`
	CPL         float64 `json:"cpl" yaml:"cpl"`
}

type PaidMonth struct {
	Leads     *float64 `json:"leads"`
	Spend     *float64 `json:"spend"`
	Clicks    *float64 `json:"clicks"`
	CPL       *float64 `json:"cpl"`
	YoYLeads  string   `json:"yoy_leads,omitempty"`
	YoYSpend  string   `json:"yoy_spend,omitempty"`
	YoYClicks string   `json:"yoy_clicks,omitempty"`
	YoYCPL    string   `json:"yoy_cpl,omitempty"`
}

type MonthlyPaid struct {
	MonthKey   string        `json:"month_key"`
	MonthLabel string        `json:"month_label"`
	Meta       *ChannelMonth `json:"meta"`
	Google     *ChannelMonth `json:"google"`
	Paid       PaidMonth     `json:"paid"`
}

type Narrative struct {
	ExecutiveSummary string   `json:"executive_summary" yaml:"executive_summary"`
	WhatWeDid        []string `json:"what_we_did" yaml:"what_we_did"`
	Challenges       []string `json:"challenges" yaml:"challenges"`
	NextFocusAreas   []string `json:"next_focus_areas" yaml:"next_focus_areas"`
}

type ReportingPeriod struct {
	TitleRange    string `json:"title_range" yaml:"title_range"`
	SubtitleRange string `json:"subtitle_range" yaml:"subtitle_range"`
}

// Report is the read-model handed to the presentation layer.
type Report struct {
	GeneratedAt     time.Time         `json:"generated_at"`
	ReportingPeriod ReportingPeriod   `json:"reporting_period"`
	Narrative       Narrative         `json:"narrative"`
	Meta            ChannelTotals     `json:"meta"`
	Schools         []SchoolAggregate `json:"schools"`
	Catalog         []string          `json:"catalog"`
	Monthly         []MonthlyPaid     `json:"monthly"`
	SearchConsole   *SearchConsole    `json:"search_console,omitempty"`
}

// SchoolEntry is one line of the schools index.
type SchoolEntry struct {
	Slug        string  `json:"slug"`
	Label       string  `json:"label"`
	PhaseLabel  string  `json:"phase_label"`
	ListMetrics Metrics `json:"list_metrics"`
}
