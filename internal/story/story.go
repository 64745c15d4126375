// Package story loads the hand-maintained parts of the board report: the
// reporting period, narrative copy, month-by-month paid figures and the
// catalog exception list.
package story

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AngelCh415/spark-report/internal/attribution"
	"github.com/AngelCh415/spark-report/internal/models"
)

const monthKeyLayout = "2006-01-02"

type Month struct {
	Key    string               `yaml:"month"`
	Meta   *models.ChannelMonth `yaml:"meta"`
	Google *models.ChannelMonth `yaml:"google"`
	Paid   *PaidOverride        `yaml:"paid"`
}

// PaidOverride carries combined figures signed off separately from the channel tables.
type PaidOverride struct {
	Leads     *float64 `yaml:"leads"`
	Spend     *float64 `yaml:"spend"`
	Clicks    *float64 `yaml:"clicks"`
	YoYLeads  string   `yaml:"yoy_leads"`
	YoYSpend  string   `yaml:"yoy_spend"`
	YoYClicks string   `yaml:"yoy_clicks"`
	YoYCPL    string   `yaml:"yoy_cpl"`
}

type Story struct {
	ReportingPeriod models.ReportingPeriod  `yaml:"reporting_period"`
	Narrative       models.Narrative        `yaml:"narrative"`
	Months          []Month                 `yaml:"months"`
	Catalog         []attribution.Synthesis `yaml:"catalog_exceptions"`
}

// Load reads a story file. A missing file is not an error, the report is
// simply built without hand-maintained content.
func Load(path string) (Story, error) {
	if path == "" {
		return Story{}, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Story{}, nil
	}
	if err != nil {
		return Story{}, fmt.Errorf("read story: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (Story, error) {
	var s Story
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Story{}, fmt.Errorf("parse story: %w", err)
	}
	for i, m := range s.Months {
		if _, err := time.Parse(monthKeyLayout, m.Key); err != nil {
			return Story{}, fmt.Errorf("story month %d: bad key %q: %w", i, m.Key, err)
		}
	}
	return s, nil
}

// Monthly resolves the paid story, one entry per month in file order.
// Combined paid figures come from the override when present, otherwise from
// Meta plus Google. CPL is nil when there are no leads.
func (s Story) Monthly() []models.MonthlyPaid {
	out := make([]models.MonthlyPaid, 0, len(s.Months))
	for _, m := range s.Months {
		t, _ := time.Parse(monthKeyLayout, m.Key)
		mp := models.MonthlyPaid{
			MonthKey:   m.Key,
			MonthLabel: t.Format("January 2006"),
			Meta:       withCPL(m.Meta),
			Google:     withCPL(m.Google),
		}
		mp.Paid.Leads = sum(m.Meta, m.Google, func(c *models.ChannelMonth) float64 { return c.Leads })
		mp.Paid.Spend = sum(m.Meta, m.Google, func(c *models.ChannelMonth) float64 { return c.Spend })
		mp.Paid.Clicks = sum(m.Meta, m.Google, func(c *models.ChannelMonth) float64 { return c.Clicks })
		if p := m.Paid; p != nil {
			if p.Leads != nil {
				mp.Paid.Leads = p.Leads
			}
			if p.Spend != nil {
				mp.Paid.Spend = p.Spend
			}
			if p.Clicks != nil {
				mp.Paid.Clicks = p.Clicks
			}
			mp.Paid.YoYLeads = p.YoYLeads
			mp.Paid.YoYSpend = p.YoYSpend
			mp.Paid.YoYClicks = p.YoYClicks
			mp.Paid.YoYCPL = p.YoYCPL
		}
		if mp.Paid.Leads != nil && *mp.Paid.Leads > 0 && mp.Paid.Spend != nil {
			cpl := *mp.Paid.Spend / *mp.Paid.Leads
			mp.Paid.CPL = &cpl
		}
		out = append(out, mp)
	}
	return out
}

func withCPL(c *models.ChannelMonth) *models.ChannelMonth {
	if c == nil {
		return nil
	}
	cp := *c
	if cp.CPL == 0 && cp.Leads > 0 {
		cp.CPL = cp.Spend / cp.Leads
	}
	return &cp
}

func sum(a, b *models.ChannelMonth, f func(*models.ChannelMonth) float64) *float64 {
	if a == nil && b == nil {
		return nil
	}
	var v float64
	if a != nil {
		v += f(a)
	}
	if b != nil {
		v += f(b)
	}
	return &v
}
