package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg               *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	buildDuration     prometheus.Histogram
	buildFailures     prometheus.Counter
	rowsIngested      *prometheus.GaugeVec
	schools           prometheus.Gauge
	catalogSize       prometheus.Gauge
	classifiedRows    *prometheus.CounterVec
}

// NewMetrics registers every collector on a private registry so several
// instances can coexist (tests build many routers).
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "report_build_duration_seconds",
			Help:    "Histogram of full report build durations.",
			Buckets: prometheus.DefBuckets,
		}),
		buildFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "report_build_failures_total",
			Help: "Total report builds that returned an error.",
		}),
		rowsIngested: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "report_rows_ingested",
			Help: "Ad rows read in the last build, by period.",
		}, []string{"period"}),
		schools: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "report_schools",
			Help: "School aggregates in the last build, General buckets included.",
		}),
		catalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "report_catalog_size",
			Help: "Candidate school names in the last built catalog.",
		}),
		classifiedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_classified_rows_total",
			Help: "Rows attributed to a named school or the General bucket.",
		}, []string{"bucket"}),
	}

	m.reg.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.buildDuration,
		m.buildFailures,
		m.rowsIngested,
		m.schools,
		m.catalogSize,
		m.classifiedRows,
	)
	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Middleware records request counts and latency. route names the series,
// it falls back to the raw path.
func (m *Metrics) Middleware(route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(recorder, r)

			if m == nil {
				return
			}
			name := r.URL.Path
			if route != nil {
				if rt := route(r); rt != "" {
					name = rt
				}
			}
			m.httpRequestsTotal.WithLabelValues(name, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		})
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry exposes the private registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

func (m *Metrics) BuildFinished(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.buildDuration.Observe(duration.Seconds())
	if err != nil {
		m.buildFailures.Inc()
	}
}

func (m *Metrics) RowsIngested(period string, n int) {
	if m == nil {
		return
	}
	m.rowsIngested.WithLabelValues(period).Set(float64(n))
}

func (m *Metrics) ReportShape(schools, catalog, named, general int) {
	if m == nil {
		return
	}
	m.schools.Set(float64(schools))
	m.catalogSize.Set(float64(catalog))
	m.classifiedRows.WithLabelValues("named").Add(float64(named))
	m.classifiedRows.WithLabelValues("general").Add(float64(general))
}
