package ingest

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AngelCh415/spark-report/internal/config"
	"github.com/AngelCh415/spark-report/internal/metrics"
	"github.com/AngelCh415/spark-report/internal/models"
	"github.com/AngelCh415/spark-report/internal/observability"
	"github.com/AngelCh415/spark-report/internal/store"
	"github.com/AngelCh415/spark-report/internal/story"
)

var ErrSinkNotConfigured = errors.New("sink not configured")

// ETL builds the report from its sources and publishes it to the store.
type ETL struct {
	c   HTTPClient
	st  *store.ReportStore
	log *slog.Logger
	cfg config.Config
	obs *observability.Metrics
	now func() time.Time
}

func NewETL(c HTTPClient, st *store.ReportStore, log *slog.Logger, cfg config.Config, obs *observability.Metrics) *ETL {
	return &ETL{c: c, st: st, log: log, cfg: cfg, obs: obs, now: time.Now}
}

// Run rebuilds the whole report from scratch. Nothing from a previous run is reused.
func (e *ETL) Run(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { e.obs.BuildFinished(time.Since(start), err) }()

	current, err := e.loadRows(ctx, "current", e.cfg.MetaCurrentURL, e.cfg.MetaCurrentFile)
	if err != nil {
		return err
	}
	previous, err := e.loadRows(ctx, "previous", e.cfg.MetaPreviousURL, e.cfg.MetaPreviousFile)
	if err != nil {
		return err
	}

	st, err := story.Load(e.cfg.StoryFile)
	if err != nil {
		return err
	}

	opts := []metrics.Option{
		metrics.WithLeadSubmissionType(e.cfg.LeadSubmissionType),
		metrics.WithSyntheses(st.Catalog),
	}
	res := metrics.AggregateDetailed(current, previous, opts...)
	e.obs.ReportShape(len(res.Schools), len(res.Catalog), res.Named, res.General)

	sc, err := LoadSearchConsole(e.cfg.SearchConsoleDir)
	if err != nil {
		if !errors.Is(err, ErrSearchConsoleNotFound) {
			return err
		}
		e.log.Warn("search console skipped", slog.String("err", err.Error()))
		sc = nil
	}

	e.st.Put(models.Report{
		GeneratedAt:     e.now().UTC(),
		ReportingPeriod: st.ReportingPeriod,
		Narrative:       st.Narrative,
		Meta:            metrics.Totals(current, previous, opts...),
		Schools:         res.Schools,
		Catalog:         res.Catalog,
		Monthly:         st.Monthly(),
		SearchConsole:   sc,
	})

	e.log.Info("report built",
		slog.Int("current_rows", len(current)),
		slog.Int("previous_rows", len(previous)),
		slog.Int("schools", len(res.Schools)),
		slog.Int("catalog", len(res.Catalog)),
		slog.Int("general_rows", res.General),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (e *ETL) loadRows(ctx context.Context, period, url, path string) ([]models.AdRow, error) {
	var (
		rows []models.AdRow
		err  error
	)
	if url != "" {
		rows, err = FetchRows(ctx, e.c, url)
	} else {
		rows, err = LoadMetaRows(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s rows: %w", period, err)
	}
	if len(rows) == 0 {
		e.log.Warn("no ad rows", slog.String("period", period), slog.String("source", firstNonEmpty(url, path)))
	}
	e.obs.RowsIngested(period, len(rows))
	return rows, nil
}

// Export posts the current report to the configured sink, signed with
// HMAC-SHA256 over the body in X-Signature.
func (e *ETL) Export(ctx context.Context) (int, error) {
	if e.cfg.SinkURL == "" || e.cfg.SinkSecret == "" {
		return 0, ErrSinkNotConfigured
	}
	rep, ok := e.st.Report()
	if !ok {
		return 0, metrics.ErrNotReady
	}
	b, err := json.Marshal(rep)
	if err != nil {
		return 0, err
	}
	mac := hmac.New(sha256.New, []byte(e.cfg.SinkSecret))
	mac.Write(b)
	sig := hex.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.SinkURL, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", sig)
	resp, err := e.c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("export sink non-2xx: %d", resp.StatusCode)
	}
	return len(rep.Schools), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
