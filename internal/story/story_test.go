package story

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
reporting_period:
  title_range: "Jan 2025 – Jan 2026"
  subtitle_range: "vs Jan 2024 – Jan 2025"
narrative:
  executive_summary: "Leads held while spend fell."
  challenges: ["CPL pressure in Q3"]
catalog_exceptions:
  - when: Rivonia
    add: Rivonia High
months:
  - month: "2025-02-01"
    meta: {leads: 916, spend: 156000, clicks: 72554, cpl: 167}
    google: {leads: 317, spend: 13204, clicks: 10333}
    paid: {leads: 1233, spend: 169204, clicks: 82887, yoy_leads: "+73%", yoy_cpl: "-26%"}
  - month: "2025-03-01"
    meta: {leads: 1376, spend: 131148, clicks: 59166}
  - month: "2025-04-01"
`

func TestParseAndMonthly(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "Jan 2025 – Jan 2026", s.ReportingPeriod.TitleRange)
	assert.Equal(t, []string{"CPL pressure in Q3"}, s.Narrative.Challenges)
	require.Len(t, s.Catalog, 1)
	assert.Equal(t, "Rivonia High", s.Catalog[0].Add)

	months := s.Monthly()
	require.Len(t, months, 3)

	feb := months[0]
	assert.Equal(t, "February 2025", feb.MonthLabel)
	assert.Equal(t, 167.0, feb.Meta.CPL)
	assert.InDelta(t, 13204.0/317.0, feb.Google.CPL, 1e-9)
	require.NotNil(t, feb.Paid.Leads)
	assert.Equal(t, 1233.0, *feb.Paid.Leads)
	require.NotNil(t, feb.Paid.CPL)
	assert.InDelta(t, 169204.0/1233.0, *feb.Paid.CPL, 1e-9)
	assert.Equal(t, "+73%", feb.Paid.YoYLeads)

	mar := months[1]
	assert.Nil(t, mar.Google)
	require.NotNil(t, mar.Paid.Spend)
	assert.Equal(t, 131148.0, *mar.Paid.Spend)

	apr := months[2]
	assert.Nil(t, apr.Paid.Leads)
	assert.Nil(t, apr.Paid.CPL)
}

func TestParseRejectsBadMonth(t *testing.T) {
	_, err := Parse([]byte("months:\n  - month: Feb 2025\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Empty(t, s.Months)

	s, err = Load("")
	require.NoError(t, err)
	assert.Empty(t, s.Months)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Months, 3)
}

func TestLoadShippedStory(t *testing.T) {
	s, err := Load(filepath.Join("..", "..", "data", "report.yaml"))
	require.NoError(t, err)
	months := s.Monthly()
	require.Len(t, months, 13)
	assert.Equal(t, "January 2025", months[0].MonthLabel)
	assert.Nil(t, months[0].Paid.Leads)

	jan26 := months[12]
	assert.Equal(t, "January 2026", jan26.MonthLabel)
	require.NotNil(t, jan26.Paid.Leads)
	assert.Equal(t, 4187.0, *jan26.Paid.Leads)
	assert.Equal(t, "-36%", jan26.Paid.YoYCPL)
}
