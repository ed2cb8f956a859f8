package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/RezaEskandarii/fxworker/internal/store"
	"github.com/RezaEskandarii/fxworker/types"
	_ "github.com/lib/pq"
)

type PostgresRateStore struct {
	db *sql.DB
}

func NewPostgresRateStore(db *sql.DB) *PostgresRateStore {
	return &PostgresRateStore{db: db}
}

// Open creates a store with its own connection pool and checks that the
// server answers.
func Open(ctx context.Context, connectionURL string) (*PostgresRateStore, error) {
	db, err := sql.Open("postgres", connectionURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return NewPostgresRateStore(db), nil
}

func (s *PostgresRateStore) Save(ctx context.Context, rec types.RateRecord) (string, error) {
	query := `
		INSERT INTO ` + schema + `.exchange_rates (task_id, from_currency, to_currency, rate, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRowContext(ctx, query, rec.TaskID, rec.From, rec.To, rec.Rate, rec.CreatedAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to save exchange rate: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *PostgresRateStore) Remove(ctx context.Context, ref string) error {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid rate reference %q: %w", ref, err)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM `+schema+`.exchange_rates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove exchange rate: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove exchange rate: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", store.ErrRecordNotFound, ref)
	}
	return nil
}

// Get loads a stored rate by reference.
func (s *PostgresRateStore) Get(ctx context.Context, ref string) (*types.RateRecord, error) {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid rate reference %q: %w", ref, err)
	}

	query := `SELECT task_id, from_currency, to_currency, rate, created_at FROM ` + schema + `.exchange_rates WHERE id = $1`
	var rec types.RateRecord
	err = s.db.QueryRowContext(ctx, query, id).Scan(&rec.TaskID, &rec.From, &rec.To, &rec.Rate, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrRecordNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange rate: %w", err)
	}
	return &rec, nil
}

func (s *PostgresRateStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresRateStore) Close() error {
	return s.db.Close()
}

var _ store.RateStore = (*PostgresRateStore)(nil)
