package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RezaEskandarii/fxworker/constants"
	"github.com/RezaEskandarii/fxworker/internal/lock"
	"github.com/rs/zerolog"
)

const schema = "fxworker"

var migrations = []string{
	`CREATE SCHEMA IF NOT EXISTS ` + schema,
	`CREATE TABLE IF NOT EXISTS ` + schema + `.exchange_rates (
		id            BIGSERIAL PRIMARY KEY,
		task_id       BIGINT      NOT NULL,
		from_currency VARCHAR(8)  NOT NULL,
		to_currency   VARCHAR(8)  NOT NULL,
		rate          NUMERIC(20, 2) NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS exchange_rates_task_id_idx ON ` + schema + `.exchange_rates (task_id)`,
}

// Migrate creates the schema and tables the rate store needs.
//
// The function performs the following steps:
//  1. Acquires the migration advisory lock so concurrent starts run it once.
//  2. Executes every statement in migrations, in order.
//
// All statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB, locks lock.DistributedLockManager, logger zerolog.Logger) error {
	if err := locks.Acquire(ctx, constants.MigrationLock); err != nil {
		return err
	}
	defer func() {
		if err := locks.Release(context.WithoutCancel(ctx), constants.MigrationLock); err != nil {
			logger.Error().Err(err).Msg("release migration lock")
		}
	}()

	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
