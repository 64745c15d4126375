package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/AngelCh415/spark-report/internal/models"
)

// MetaSheet is the worksheet name of a paid social raw data export.
const MetaSheet = "Raw Data Report"

const (
	colCampaign      = "Campaign name"
	colAdSet         = "Ad set name"
	colResultType    = "Result type"
	colResults       = "Results"
	colCostPerResult = "Cost per result"
	colAmountSpent   = "Amount spent (ZAR)"
	colImpressions   = "Impressions"
	colClicks        = "Clicks (all)"
	colReach         = "Reach"
	colStarts        = "Reporting starts"
	colEnds          = "Reporting ends"
)

// MetaColumns is the header row LoadMetaRows understands, in export order.
var MetaColumns = []string{
	colCampaign, colAdSet, colResultType, colResults, colCostPerResult,
	colAmountSpent, colImpressions, colClicks, colReach, colStarts, colEnds,
}

// LoadMetaRows reads a paid social XLSX export. A missing file yields no rows.
func LoadMetaRows(path string) ([]models.AdRow, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer f.Close()

	sheet := MetaSheet
	if idx, _ := f.GetSheetIndex(MetaSheet); idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("no readable worksheet found in Meta XLSX export")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return []models.AdRow{}, nil
	}

	colIndex := make(map[string]int)
	for i, col := range rows[0] {
		colIndex[strings.TrimSpace(col)] = i
	}
	cell := func(row []string, name string) string {
		i, ok := colIndex[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]models.AdRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		out = append(out, sanitize(models.AdRow{
			CampaignName:  cell(row, colCampaign),
			AdSetName:     cell(row, colAdSet),
			ResultType:    cell(row, colResultType),
			Results:       asNumber(cell(row, colResults)),
			CostPerResult: asNumber(cell(row, colCostPerResult)),
			AmountSpent:   asNumber(cell(row, colAmountSpent)),
			Impressions:   asNumber(cell(row, colImpressions)),
			Clicks:        asNumber(cell(row, colClicks)),
			Reach:         asNumber(cell(row, colReach)),
			PeriodStart:   parseDate(cell(row, colStarts)),
			PeriodEnd:     parseDate(cell(row, colEnds)),
		}))
	}
	return out, nil
}
