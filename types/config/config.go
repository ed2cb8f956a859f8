package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	errors2 "github.com/RezaEskandarii/fxworker/custom_errors"
	"github.com/RezaEskandarii/fxworker/types"
)

type FxWorkerConfig struct {
	Mode Mode // Log verbosity: debug, production or silent

	Queue     QueueConfig     // Beanstalkd server and tube
	Converter ConverterConfig // Exchange rate provider

	StorageDriver StorageDriver // Backend used to persist fetched rates
	// Configuration for PostgreSQL storage driver
	PostgresConfig PostgresConfig
	// Configuration for Redis storage driver
	RedisConfig RedisConfig

	WorkerCount   int // Number of independent consumer workers
	FirstWorkerID int // Workers are numbered FirstWorkerID .. FirstWorkerID+WorkerCount-1

	MetricsAddr string // Listen address for /metrics; empty disables the endpoint

	// Producer settings. SeedPairs are inserted on start, and again on every
	// SeedSchedule tick when a cron expression is given.
	SeedPairs    []types.CurrencyPair
	SeedSchedule string
	FirstTaskID  int64
}

// QueueConfig holds beanstalkd connection settings.
type QueueConfig struct {
	Host string
	Port int
	Tube string
}

// Addr returns the host:port of the queue server.
func (q QueueConfig) Addr() string {
	return net.JoinHostPort(q.Host, strconv.Itoa(q.Port))
}

// ConverterConfig points at the currency conversion page to scrape.
type ConverterConfig struct {
	Host    string
	Path    string
	Scheme  string
	Timeout time.Duration
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	ConnectionUrl string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string // Redis client address (e.g., "localhost:6379")
	Password string // Password for Redis authentication (optional)
	DB       int    // Redis database number to use (e.g., 0 by default)
}

// Option type for functional options pattern
type Option func(*FxWorkerConfig) error

// NewFxWorkerConfig creates a configuration populated with defaults and then
// applies opts. All option and consistency errors are reported together as a
// *custom_errors.ValidationError.
func NewFxWorkerConfig(opts ...Option) (*FxWorkerConfig, error) {
	cfg := &FxWorkerConfig{
		Mode: DefaultMode,
		Queue: QueueConfig{
			Host: DefaultQueueHost,
			Port: DefaultQueuePort,
			Tube: DefaultTube,
		},
		Converter: ConverterConfig{
			Host:    DefaultConverterHost,
			Path:    DefaultConverterPath,
			Scheme:  "https",
			Timeout: DefaultConverterTimeout,
		},
		StorageDriver: DefaultStorageDriver,
		WorkerCount:   DefaultWorkerCount,
		FirstWorkerID: DefaultFirstWorkerID,
		FirstTaskID:   1,
	}

	validationErrs := &errors2.ValidationError{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			validationErrs.Add(err)
		}
	}
	if !validationErrs.HasError() {
		cfg.validate(validationErrs)
	}
	if validationErrs.HasError() {
		return nil, validationErrs
	}
	return cfg, nil
}

func (c *FxWorkerConfig) validate(v *errors2.ValidationError) {
	switch c.StorageDriver {
	case Postgres:
		if c.PostgresConfig.ConnectionUrl == "" {
			v.Add(errors.New("postgres client: connection URL is required"))
		}
	case Redis:
		if c.RedisConfig.Address == "" {
			v.Add(errors.New("redis client: address is required"))
		}
	default:
		v.Addf("unsupported storage driver: %s", c.StorageDriver)
	}
}

// WorkerIDs lists the ids of the workers this configuration starts.
func (c *FxWorkerConfig) WorkerIDs() []int {
	ids := make([]int, c.WorkerCount)
	for i := range ids {
		ids[i] = c.FirstWorkerID + i
	}
	return ids
}

func WithMode(mode Mode) Option {
	return func(c *FxWorkerConfig) error {
		if !mode.Valid() {
			return fmt.Errorf("unknown mode %q", mode)
		}
		c.Mode = mode
		return nil
	}
}

func WithQueue(q QueueConfig) Option {
	return func(c *FxWorkerConfig) error {
		if q.Host == "" {
			return errors.New("queue: host is required")
		}
		if q.Port <= 0 || q.Port > 65535 {
			return fmt.Errorf("queue: invalid port %d", q.Port)
		}
		if q.Tube == "" {
			return errors.New("queue: tube is required")
		}
		c.Queue = q
		return nil
	}
}

func WithConverter(cc ConverterConfig) Option {
	return func(c *FxWorkerConfig) error {
		if cc.Host == "" {
			return errors.New("converter: host is required")
		}
		if cc.Scheme == "" {
			cc.Scheme = c.Converter.Scheme
		}
		if cc.Scheme != "http" && cc.Scheme != "https" {
			return fmt.Errorf("converter: unsupported scheme %q", cc.Scheme)
		}
		if cc.Timeout <= 0 {
			cc.Timeout = DefaultConverterTimeout
		}
		if cc.Timeout > MaxConverterTimeout {
			return fmt.Errorf("converter: timeout %s must not exceed %s", cc.Timeout, MaxConverterTimeout)
		}
		c.Converter = cc
		return nil
	}
}

func WithPostgresConfig(pg PostgresConfig) Option {
	return func(c *FxWorkerConfig) error {
		if pg.ConnectionUrl == "" {
			return errors.New("postgres client: connection URL is required")
		}
		c.StorageDriver = Postgres
		c.PostgresConfig = pg
		return nil
	}
}

func WithRedisConfig(rc RedisConfig) Option {
	return func(c *FxWorkerConfig) error {
		if rc.Address == "" {
			return errors.New("redis client: address is required")
		}
		if rc.DB < 0 {
			return errors.New("redis client: db must not be negative")
		}
		c.StorageDriver = Redis
		c.RedisConfig = rc
		return nil
	}
}

func WithWorkers(count, firstID int) Option {
	return func(c *FxWorkerConfig) error {
		if count < 1 {
			return errors.New("worker count must be positive")
		}
		if firstID < 0 {
			return errors.New("first worker id must not be negative")
		}
		c.WorkerCount = count
		c.FirstWorkerID = firstID
		return nil
	}
}

func WithMetricsAddr(addr string) Option {
	return func(c *FxWorkerConfig) error {
		if addr == "" {
			return nil
		}
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("metrics address: %w", err)
		}
		c.MetricsAddr = addr
		return nil
	}
}

func WithSeedPairs(firstTaskID int64, pairs ...types.CurrencyPair) Option {
	return func(c *FxWorkerConfig) error {
		if firstTaskID < 1 {
			return errors.New("seed: first task id must be positive")
		}
		for i, p := range pairs {
			if p.From == "" || p.To == "" {
				return fmt.Errorf("seed: pair %d is missing a currency code", i)
			}
		}
		c.FirstTaskID = firstTaskID
		c.SeedPairs = append(c.SeedPairs, pairs...)
		return nil
	}
}

// WithSeedSchedule sets the cron expression on which the producer re-seeds.
// The expression is checked by the producer when it is parsed.
func WithSeedSchedule(expression string) Option {
	return func(c *FxWorkerConfig) error {
		c.SeedSchedule = expression
		return nil
	}
}
