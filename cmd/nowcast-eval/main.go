// Command nowcast-eval evaluates ILI nowcasts against finalized wILI.
//
// Usage:
//
//	nowcast-eval <nowcast_info|sensor_info|table|heatmap [location]|publish|serve|all>
//
// Settings come from the environment (optionally a .env file) and the YAML
// file named by ANALYSIS_CONFIG. NAIVE_LAG is required.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/ili-nowcast-eval/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/ili-nowcast-eval/internal/adapter/kafka"
	"github.com/couchcryptid/ili-nowcast-eval/internal/adapter/postgres"
	"github.com/couchcryptid/ili-nowcast-eval/internal/analysis"
	"github.com/couchcryptid/ili-nowcast-eval/internal/config"
	"github.com/couchcryptid/ili-nowcast-eval/internal/observability"
	"github.com/couchcryptid/ili-nowcast-eval/internal/pipeline"
	"github.com/couchcryptid/ili-nowcast-eval/internal/report"
	"github.com/couchcryptid/ili-nowcast-eval/internal/store"
)

const usage = "usage: nowcast-eval <nowcast_info|sensor_info|table|heatmap [location]|publish|serve|all>"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &app{cfg: cfg, logger: logger, metrics: metrics, out: os.Stdout}
	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	out     io.Writer

	store    *store.Store
	analyzer *analysis.Analyzer
	heatmaps *analysis.HeatmapBuilder
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "nowcast_info", "sensor_info", "table", "heatmap", "publish", "serve", "all":
	default:
		return fmt.Errorf("unknown command %q; %s", command, usage)
	}

	if err := a.load(); err != nil {
		return err
	}

	switch command {
	case "nowcast_info":
		return a.nowcastInfo()
	case "sensor_info":
		return a.sensorInfo()
	case "table":
		return a.table(ctx)
	case "heatmap":
		return a.heatmap(args)
	case "publish":
		return a.publish(ctx)
	case "serve":
		return a.serve(ctx)
	default:
		for _, step := range []func() error{
			a.nowcastInfo,
			a.sensorInfo,
			func() error { return a.table(ctx) },
			func() error { return a.heatmap(nil) },
		} {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	}
}

func (a *app) load() error {
	s, err := store.LoadDir(a.cfg.DataDir, a.logger)
	if err != nil {
		return fmt.Errorf("load %s: %w", a.cfg.DataDir, err)
	}
	for _, name := range s.Datasets() {
		a.metrics.RowsLoaded.WithLabelValues(name).Add(float64(s.RowCount(name)))
	}

	extractor := analysis.NewExtractor(s, a.cfg.Exclusions)
	a.store = s
	a.analyzer = analysis.NewAnalyzer(extractor, a.cfg.Sensors, a.cfg.Model, a.cfg.NaiveLag)
	a.heatmaps = analysis.NewHeatmapBuilder(extractor, a.cfg.Sensors)
	a.logger.Info("data loaded",
		"datasets", len(s.Datasets()),
		"model", a.cfg.Model,
		"naive_lag", a.cfg.NaiveLag,
		"sensors", len(a.cfg.Sensors),
		"locations", len(a.cfg.Locations),
	)
	return nil
}

func (a *app) nowcastInfo() error {
	summary, err := a.analyzer.NowcastSummary(a.cfg.Locations)
	if err != nil {
		return err
	}
	return report.WriteNowcastSummary(a.out, summary)
}

func (a *app) sensorInfo() error {
	summaries, err := a.analyzer.SensorSummaries(a.cfg.Locations)
	if err != nil {
		return err
	}
	return report.WriteSensorSummaries(a.out, summaries)
}

func (a *app) table(ctx context.Context) error {
	policy := report.AbortOnFailure
	if a.cfg.SkipFailedLocations {
		policy = report.SkipFailed
	}
	t, err := report.NewGenerator(a.analyzer, policy, a.logger, a.metrics).Table(ctx, a.cfg.Locations)
	if err != nil {
		return err
	}
	if a.cfg.ReportFormat == config.FormatCSV {
		return report.WriteCSV(a.out, t.Rows)
	}
	return report.WriteLaTeX(a.out, t.Rows)
}

func (a *app) heatmap(args []string) error {
	location := analysis.NationalLocation
	if len(args) > 0 {
		location = args[0]
	}
	h, err := a.heatmaps.Build(nil, location)
	if err != nil {
		return err
	}
	return report.WriteHeatmapCSV(a.out, h)
}

func (a *app) publish(ctx context.Context) error {
	rows, err := a.store.Nowcasts(store.NowcastDataset(a.cfg.Model))
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		BatchSize: a.cfg.BatchSize,
		Window:    pipeline.Window{First: a.cfg.PublishFirst, Last: a.cfg.PublishLast},
		DryRun:    a.cfg.PublishDryRun,
	}

	var loader pipeline.RecordLoader
	switch a.cfg.PublishSink {
	case config.SinkKafka:
		w := kafkaadapter.NewWriter(a.cfg, a.logger)
		defer func() {
			if err := w.Close(); err != nil {
				a.logger.Error("kafka writer close error", "error", err)
			}
		}()
		loader = w
	case config.SinkPostgres:
		repo, err := postgres.Open(ctx, a.cfg.DatabaseURL, a.logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := repo.Close(); err != nil {
				a.logger.Error("postgres close error", "error", err)
			}
		}()
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		if prev, ok, err := repo.LastUpdate(ctx); err != nil {
			return err
		} else if ok {
			a.logger.Info("previous publication", "updated", prev)
		}
		loader = repo
	default:
		a.logger.Info("no publish sink configured, running dry")
		opts.DryRun = true
	}

	p := pipeline.New(loader, clockwork.NewRealClock(), a.logger, a.metrics, opts)
	_, err = p.Publish(ctx, rows)
	return err
}

func (a *app) serve(ctx context.Context) error {
	srv := httpadapter.NewServer(a.cfg.HTTPAddr, a.store, a.analyzer, a.heatmaps, a.metrics, a.logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", "error", err)
	}
	a.logger.Info("shutdown complete")
	return nil
}
