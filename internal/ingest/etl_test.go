package ingest

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/spark-report/internal/config"
	"github.com/AngelCh415/spark-report/internal/metrics"
	"github.com/AngelCh415/spark-report/internal/models"
	"github.com/AngelCh415/spark-report/internal/observability"
	"github.com/AngelCh415/spark-report/internal/store"
)

const storyYAML = `
reporting_period:
  title_range: "Jan 2025 – Jan 2026"
narrative:
  executive_summary: "Steady."
months:
  - month: "2025-01-01"
    meta: {leads: 10, spend: 1000, clicks: 50}
`

func testETL(t *testing.T, cfg config.Config) (*ETL, *store.ReportStore) {
	t.Helper()
	st := store.NewReportStore()
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewETL(NewHTTPClient(2*time.Second), st, log, cfg, observability.NewMetrics()), st
}

func TestETLRunFromFiles(t *testing.T) {
	dir := t.TempDir()
	storyPath := filepath.Join(dir, "report.yaml")
	require.NoError(t, os.WriteFile(storyPath, []byte(storyYAML), 0o644))

	cfg := config.Defaults()
	cfg.MetaCurrentFile = writeMetaXLSX(t, MetaSheet,
		metaRow("Enrolment", "SPARK Ferndale - Grade R-7", "Lead", 6, 600),
		metaRow("Enrolment", "Retargeting | Broad", "Lead", 2, 100),
	)
	cfg.MetaPreviousFile = writeMetaXLSX(t, MetaSheet,
		metaRow("Enrolment", "SPARK Ferndale - Grade R-7", "Lead", 3, 600),
	)
	cfg.StoryFile = storyPath
	cfg.SearchConsoleDir = filepath.Join(dir, "no-search-console")

	etl, st := testETL(t, cfg)
	require.NoError(t, etl.Run(context.Background()))

	rep, ok := st.Report()
	require.True(t, ok)
	assert.Equal(t, "Jan 2025 – Jan 2026", rep.ReportingPeriod.TitleRange)
	assert.Equal(t, "Steady.", rep.Narrative.ExecutiveSummary)
	assert.Nil(t, rep.SearchConsole)
	require.Len(t, rep.Monthly, 1)
	assert.Equal(t, "January 2025", rep.Monthly[0].MonthLabel)

	assert.Equal(t, 8.0, rep.Meta.Current.LeadsTotal)
	assert.Equal(t, 3.0, rep.Meta.Previous.LeadsTotal)

	ferndale, ok := st.School("ferndale")
	require.True(t, ok)
	assert.Equal(t, 6.0, ferndale.ListMetrics.LeadsTotal)
	assert.Equal(t, 3.0, ferndale.PhaseData[models.PhasePrimary].Previous.LeadsTotal)

	_, ok = st.School("general-primary")
	assert.True(t, ok)
}

func TestETLRunFromURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/current":
			w.Write([]byte(`[{"ad_set_name":"SPARK Ferndale","result_type":"Lead","results":2,"amount_spent":20}]`))
		case "/previous":
			w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := config.Defaults()
	cfg.MetaCurrentURL = srv.URL + "/current"
	cfg.MetaPreviousURL = srv.URL + "/previous"
	cfg.StoryFile = ""
	cfg.SearchConsoleDir = filepath.Join(t.TempDir(), "absent")

	etl, st := testETL(t, cfg)
	require.NoError(t, etl.Run(context.Background()))
	rep, ok := st.Report()
	require.True(t, ok)
	assert.Equal(t, []string{"Ferndale"}, rep.Catalog)
}

func TestETLRunSourceError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cfg := config.Defaults()
	cfg.MetaCurrentURL = srv.URL
	etl, st := testETL(t, cfg)
	assert.Error(t, etl.Run(context.Background()))
	assert.False(t, st.Ready())
}

func TestETLExportSigned(t *testing.T) {
	const secret = "s3cret"
	var gotBody []byte
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get("X-Signature")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := config.Defaults()
	cfg.SinkURL = srv.URL
	cfg.SinkSecret = secret
	etl, st := testETL(t, cfg)

	_, err := etl.Export(context.Background())
	assert.ErrorIs(t, err, metrics.ErrNotReady)

	st.Put(models.Report{
		GeneratedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Schools:     []models.SchoolAggregate{{Slug: "ferndale", School: "Ferndale"}},
	})
	n, err := etl.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSig)

	var rep models.Report
	require.NoError(t, json.Unmarshal(gotBody, &rep))
	assert.Equal(t, "ferndale", rep.Schools[0].Slug)
}

func TestETLExportNotConfigured(t *testing.T) {
	etl, _ := testETL(t, config.Defaults())
	_, err := etl.Export(context.Background())
	assert.ErrorIs(t, err, ErrSinkNotConfigured)
}
