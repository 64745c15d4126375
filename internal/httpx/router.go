package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/spark-report/internal/access"
	"github.com/AngelCh415/spark-report/internal/ingest"
	"github.com/AngelCh415/spark-report/internal/metrics"
	"github.com/AngelCh415/spark-report/internal/observability"
	"github.com/AngelCh415/spark-report/internal/store"
	"github.com/AngelCh415/spark-report/internal/utils"
)

type Deps struct {
	Log     *slog.Logger
	ETL     *ingest.ETL
	Service *metrics.Service
	Store   *store.ReportStore
	Gate    *access.Gate
	Obs     *observability.Metrics
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}

func NewRouter(d Deps) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(d.Log))
	mux.Use(d.Obs.Middleware(routePattern))
	mux.Use(d.Gate.Middleware)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !d.Store.Ready() {
			http.Error(w, "report not built", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte("ready"))
	})
	mux.Method(http.MethodGet, "/metrics", d.Obs.Handler())

	mux.Get(access.PagePath, d.Gate.Page)
	mux.Get(access.APIPath, d.Gate.Status)
	mux.Post(access.APIPath, d.Gate.Unlock)
	mux.Delete(access.APIPath, d.Gate.Lock)

	mux.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/report", http.StatusFound)
	})

	mux.Route("/api", func(api chi.Router) {
		api.Get("/report", func(w http.ResponseWriter, r *http.Request) {
			rep, ok := d.Store.Report()
			if !ok {
				writeError(w, metrics.ErrNotReady)
				return
			}
			writeJSON(w, rep)
		})

		api.Post("/report/rebuild", func(w http.ResponseWriter, r *http.Request) {
			if err := d.ETL.Run(r.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			builtAt, builds := d.Store.BuiltAt()
			writeJSON(w, map[string]any{"built_at": builtAt.Format(time.RFC3339), "builds": builds})
		})

		api.Post("/report/export", func(w http.ResponseWriter, r *http.Request) {
			n, err := d.ETL.Export(r.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, map[string]any{"exported": n})
		})

		api.Get("/schools", func(w http.ResponseWriter, r *http.Request) {
			rows, err := d.Service.Directory(r.URL.Query())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, rows)
		})

		api.Get("/schools/{slug}", func(w http.ResponseWriter, r *http.Request) {
			s, err := d.Service.School(chi.URLParam(r, "slug"), r.URL.Query().Get("phase"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, s)
		})

		api.Get("/monthly", func(w http.ResponseWriter, r *http.Request) {
			rep, ok := d.Store.Report()
			if !ok {
				writeError(w, metrics.ErrNotReady)
				return
			}
			writeJSON(w, rep.Monthly)
		})

		api.Get("/search-console", func(w http.ResponseWriter, r *http.Request) {
			rep, ok := d.Store.Report()
			if !ok {
				writeError(w, metrics.ErrNotReady)
				return
			}
			if rep.SearchConsole == nil {
				http.Error(w, "search console data not loaded", http.StatusNotFound)
				return
			}
			writeJSON(w, rep.SearchConsole)
		})
	})

	return mux
}

func writeError(w http.ResponseWriter, err error) {
	var code int
	switch {
	case errors.Is(err, metrics.ErrNotReady):
		code = http.StatusServiceUnavailable
	case errors.Is(err, metrics.ErrSchoolUnknown), errors.Is(err, metrics.ErrPhaseUnknown):
		code = http.StatusNotFound
	case errors.Is(err, ingest.ErrSinkNotConfigured):
		code = http.StatusNotImplemented
	default:
		code = http.StatusBadGateway
	}
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
