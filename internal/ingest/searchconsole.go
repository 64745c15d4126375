package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AngelCh415/spark-report/internal/models"
)

var ErrSearchConsoleNotFound = errors.New("search console data directory not found")

// SearchConsoleDirs are tried in order when no directory is configured.
var SearchConsoleDirs = []string{
	filepath.Join("data", "search-console"),
	filepath.Join("data", "search console"),
}

const searchConsoleTop = 10

func resolveSearchConsoleDir(dir string) (string, error) {
	candidates := SearchConsoleDirs
	if dir != "" {
		candidates = []string{dir}
	}
	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && st.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrSearchConsoleNotFound, strings.Join(candidates, ", "))
}

// LoadSearchConsole reads the CSV files of a Search Console performance export.
// Missing individual files are treated as empty.
func LoadSearchConsole(dir string) (*models.SearchConsole, error) {
	dir, err := resolveSearchConsoleDir(dir)
	if err != nil {
		return nil, err
	}

	read := func(name string) ([]map[string]string, error) {
		rows, err := readCSVRows(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("search console %s: %w", name, err)
		}
		return rows, nil
	}

	files := []string{"Chart.csv", "Queries.csv", "Countries.csv", "Pages.csv", "Devices.csv", "Search appearance.csv", "Filters.csv"}
	data := make(map[string][]map[string]string, len(files))
	for _, name := range files {
		rows, err := read(name)
		if err != nil {
			return nil, err
		}
		data[name] = rows
	}

	return &models.SearchConsole{
		Headline:         headline(data["Chart.csv"]),
		TopQueries:       toMetricRows(data["Queries.csv"], []string{"Query", "Top queries"}, searchConsoleTop),
		TopCountries:     toMetricRows(data["Countries.csv"], []string{"Country"}, searchConsoleTop),
		Pages:            data["Pages.csv"],
		Devices:          data["Devices.csv"],
		SearchAppearance: data["Search appearance.csv"],
		Filters:          data["Filters.csv"],
	}, nil
}

// readCSVRows parses a CSV with a header row into one map per record. Ragged
// rows are tolerated, blank lines skipped and values trimmed.
func readCSVRows(path string) ([]map[string]string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, []byte("\ufeff"))

	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return []map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	out := []map[string]string{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		empty := true
		for i, h := range header {
			v := ""
			if i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			if v != "" {
				empty = false
			}
			row[h] = v
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out, nil
}

func position(row map[string]string) float64 {
	if v, ok := row["Position"]; ok {
		return asNumber(v)
	}
	return asNumber(row["Average position"])
}

func toMetricRows(rows []map[string]string, labelKeys []string, limit int) []models.SearchConsoleMetricRow {
	out := make([]models.SearchConsoleMetricRow, 0, len(rows))
	for _, row := range rows {
		label := "Unknown"
		for _, k := range labelKeys {
			if v := strings.TrimSpace(row[k]); v != "" {
				label = v
				break
			}
		}
		clicks := asNumber(row["Clicks"])
		impressions := asNumber(row["Impressions"])
		out = append(out, models.SearchConsoleMetricRow{
			Label:       label,
			Clicks:      clicks,
			Impressions: impressions,
			CTR:         safeDivF(clicks, impressions),
			AvgPosition: position(row),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Clicks > out[j].Clicks })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// headline totals the daily chart. Average position is weighted by impressions.
func headline(rows []map[string]string) models.SearchConsoleHeadline {
	var h models.SearchConsoleHeadline
	var weighted float64
	for _, row := range rows {
		clicks := asNumber(row["Clicks"])
		impressions := asNumber(row["Impressions"])
		h.Clicks += clicks
		h.Impressions += impressions
		weighted += position(row) * impressions
	}
	h.AvgCTR = safeDivF(h.Clicks, h.Impressions)
	h.AvgPosition = safeDivF(weighted, h.Impressions)
	return h
}

func safeDivF(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
