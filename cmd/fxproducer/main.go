package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/RezaEskandarii/fxworker/app"
	"github.com/RezaEskandarii/fxworker/internal/logging"
	"github.com/RezaEskandarii/fxworker/types/config"
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
		logger.Error().Err(err).Msg("fxproducer exited")
		os.Exit(1)
	}
}

// run seeds the configured pairs once and, when a schedule is set, again on
// every tick until a shutdown signal arrives.
func run(cfg *config.FxWorkerConfig, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container := app.NewContainer(cfg, logger, nil)
	p, closeProducer, err := container.NewProducer(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeProducer(); err != nil {
			logger.Error().Err(err).Msg("close producer")
		}
	}()

	handles, err := p.Seed(ctx, cfg.SeedPairs)
	if err != nil {
		return err
	}
	logger.Info().Int("jobs", len(handles)).Str("tube", cfg.Queue.Tube).Msg("seeded")

	if cfg.SeedSchedule == "" {
		return nil
	}
	logger.Info().Str("schedule", cfg.SeedSchedule).Msg("seeding on schedule")
	return p.Schedule(ctx, cfg.SeedSchedule, cfg.SeedPairs)
}
