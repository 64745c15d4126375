package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

func TestLoadSearchConsole(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"Chart.csv": "\ufeffDate,Clicks,Impressions,CTR,Position\n" +
			"2025-01-01,10,100,10%,2\n" +
			"2025-01-02,30,300,10%,4\n",
		"Queries.csv": "Top queries,Clicks,Impressions,CTR,Position\n" +
			"spark schools,5,50,10%,1.2\n" +
			"spark ferndale,40,200,20%,1.0\n" +
			"\n" +
			",1,10,10%,8\n",
		"Countries.csv": "Country,Clicks,Impressions,CTR,Average position\n" +
			"South Africa,90,900,10%,3.5\n",
		"Devices.csv": "Device,Clicks\nMobile,70\n",
	})

	sc, err := LoadSearchConsole(dir)
	require.NoError(t, err)

	assert.Equal(t, 40.0, sc.Headline.Clicks)
	assert.Equal(t, 400.0, sc.Headline.Impressions)
	assert.InDelta(t, 0.1, sc.Headline.AvgCTR, 1e-9)
	assert.InDelta(t, 3.5, sc.Headline.AvgPosition, 1e-9)

	require.Len(t, sc.TopQueries, 3)
	assert.Equal(t, "spark ferndale", sc.TopQueries[0].Label)
	assert.InDelta(t, 0.2, sc.TopQueries[0].CTR, 1e-9)
	assert.Equal(t, "spark schools", sc.TopQueries[1].Label)
	assert.Equal(t, "Unknown", sc.TopQueries[2].Label)

	require.Len(t, sc.TopCountries, 1)
	assert.Equal(t, 3.5, sc.TopCountries[0].AvgPosition)

	assert.Equal(t, []map[string]string{{"Device": "Mobile", "Clicks": "70"}}, sc.Devices)
	assert.Empty(t, sc.Pages)
	assert.Empty(t, sc.Filters)
}

func TestLoadSearchConsoleTopTen(t *testing.T) {
	dir := t.TempDir()
	body := "Query,Clicks,Impressions\n"
	for i := 0; i < 15; i++ {
		body += "q,1,10\n"
	}
	writeFiles(t, dir, map[string]string{"Queries.csv": body})

	sc, err := LoadSearchConsole(dir)
	require.NoError(t, err)
	assert.Len(t, sc.TopQueries, 10)
	assert.Zero(t, sc.Headline.AvgPosition)
}

func TestLoadSearchConsoleMissingDir(t *testing.T) {
	_, err := LoadSearchConsole(filepath.Join(t.TempDir(), "absent"))
	assert.ErrorIs(t, err, ErrSearchConsoleNotFound)
}
