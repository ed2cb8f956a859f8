// Package logging builds the process logger from the configured mode.
package logging

import (
	"io"
	"time"

	"github.com/RezaEskandarii/fxworker/types/config"
	"github.com/rs/zerolog"
)

// New returns a logger writing to w. Debug mode uses the human readable
// console format and logs every lifecycle event; production writes JSON at
// info level; silent keeps only errors.
func New(mode config.Mode, w io.Writer) zerolog.Logger {
	switch mode {
	case config.ModeProduction:
		return zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	case config.ModeSilent:
		return zerolog.New(w).Level(zerolog.ErrorLevel).With().Timestamp().Logger()
	default:
		out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
		return zerolog.New(out).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}
}

// ForWorker tags every entry with the worker id.
func ForWorker(logger zerolog.Logger, workerID int) zerolog.Logger {
	return logger.With().Int("worker_id", workerID).Logger()
}
