package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/RezaEskandarii/fxworker/internal/store"
	"github.com/RezaEskandarii/fxworker/types"
	"github.com/redis/go-redis/v9"
)

const (
	sequenceKey = "fxworker:rates:seq"
	recordKey   = "fxworker:rate:"
)

// RedisRateStore keeps each rate in its own hash. The hash key is the
// reference handed back by Save.
type RedisRateStore struct {
	client *redis.Client
}

func NewRedisRateStore(client *redis.Client) *RedisRateStore {
	return &RedisRateStore{client: client}
}

// Open dials a dedicated client and pings it.
func Open(ctx context.Context, addr, password string, db int) (*RedisRateStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisRateStore(client), nil
}

func (s *RedisRateStore) Save(ctx context.Context, rec types.RateRecord) (string, error) {
	id, err := s.client.Incr(ctx, sequenceKey).Result()
	if err != nil {
		return "", fmt.Errorf("failed to allocate rate id: %w", err)
	}

	key := recordKey + strconv.FormatInt(id, 10)
	err = s.client.HSet(ctx, key,
		"task_id", rec.TaskID,
		"from", rec.From,
		"to", rec.To,
		"rate", rec.Rate,
		"create_at", rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return "", fmt.Errorf("failed to save exchange rate: %w", err)
	}
	return key, nil
}

func (s *RedisRateStore) Remove(ctx context.Context, ref string) error {
	n, err := s.client.Del(ctx, ref).Result()
	if err != nil {
		return fmt.Errorf("failed to remove exchange rate: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", store.ErrRecordNotFound, ref)
	}
	return nil
}

// Get loads a stored rate by reference.
func (s *RedisRateStore) Get(ctx context.Context, ref string) (*types.RateRecord, error) {
	fields, err := s.client.HGetAll(ctx, ref).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange rate: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrRecordNotFound, ref)
	}

	taskID, err := strconv.ParseInt(fields["task_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt rate %s: task_id: %w", ref, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["create_at"])
	if err != nil {
		return nil, fmt.Errorf("corrupt rate %s: create_at: %w", ref, err)
	}

	return &types.RateRecord{
		TaskID:    taskID,
		From:      fields["from"],
		To:        fields["to"],
		Rate:      fields["rate"],
		CreatedAt: createdAt,
	}, nil
}

func (s *RedisRateStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisRateStore) Close() error {
	return s.client.Close()
}

var _ store.RateStore = (*RedisRateStore)(nil)
