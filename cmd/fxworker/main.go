package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RezaEskandarii/fxworker/app"
	"github.com/RezaEskandarii/fxworker/internal/logging"
	"github.com/RezaEskandarii/fxworker/internal/metrics"
	"github.com/RezaEskandarii/fxworker/types/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "fxworker.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		startupLogger := logging.New(config.ModeProduction, os.Stderr)
		startupLogger.Error().Err(err).Msg("load configuration")
		os.Exit(1)
	}
	logger := logging.New(cfg.Mode, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("fxworker exited")
		os.Exit(1)
	}
}

// run returns nil only after a shutdown signal. Any worker failure ends the
// whole process; restarting it is left to the supervisor.
func run(cfg *config.FxWorkerConfig, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	container := app.NewContainer(cfg, logger, m)
	if err := container.Migrate(ctx); err != nil {
		return err
	}

	logger.Info().
		Int("workers", cfg.WorkerCount).
		Str("queue", cfg.Queue.Addr()).
		Str("tube", cfg.Queue.Tube).
		Str("storage", cfg.StorageDriver.String()).
		Msg("fxworker starting")

	if err := container.NewPool().Run(ctx); err != nil {
		return err
	}
	logger.Info().Msg("fxworker shutdown complete")
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	return srv
}
