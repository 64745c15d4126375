package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AngelCh415/spark-report/internal/access"
	"github.com/AngelCh415/spark-report/internal/config"
	"github.com/AngelCh415/spark-report/internal/httpx"
	"github.com/AngelCh415/spark-report/internal/ingest"
	"github.com/AngelCh415/spark-report/internal/metrics"
	"github.com/AngelCh415/spark-report/internal/observability"
	"github.com/AngelCh415/spark-report/internal/store"
)

var configPath string

type app struct {
	cfg    config.Config
	logger *slog.Logger
	st     *store.ReportStore
	obs    *observability.Metrics
	etl    *ingest.ETL
}

func setup() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	st := store.NewReportStore()
	obs := observability.NewMetrics()
	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	return &app{
		cfg:    cfg,
		logger: logger,
		st:     st,
		obs:    obs,
		etl:    ingest.NewETL(cl, st, logger, cfg, obs),
	}, nil
}

var rootCmd = &cobra.Command{
	Use:           "spark-report",
	Short:         "Build and serve the Spark schools marketing report",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the report, then serve it over HTTP",
	RunE:  runServe,
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the report once and write it as JSON",
	RunE:  runBuild,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("REPORT_CONFIG"), "YAML config file (env vars override it)")
	buildCmd.Flags().String("out", "", "write the report here instead of stdout")
	rootCmd.AddCommand(serveCmd, buildCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// a failed first build leaves /readyz at 503 until a rebuild succeeds
	if err := a.etl.Run(ctx); err != nil {
		a.logger.Error("initial build failed", slog.String("err", err.Error()))
	}

	r := httpx.NewRouter(httpx.Deps{
		Log:     a.logger,
		ETL:     a.etl,
		Service: metrics.NewService(a.st),
		Store:   a.st,
		Gate:    access.NewGate(a.cfg.AccessCode, a.cfg.SecureCookie),
		Obs:     a.obs,
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info("starting server", slog.String("port", a.cfg.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runBuild(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	if err := a.etl.Run(cmd.Context()); err != nil {
		return err
	}
	rep, _ := a.st.Report()

	var w io.Writer = cmd.OutOrStdout()
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
