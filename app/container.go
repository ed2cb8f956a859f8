package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RezaEskandarii/fxworker/internal/lock"
	"github.com/RezaEskandarii/fxworker/internal/logging"
	"github.com/RezaEskandarii/fxworker/internal/metrics"
	"github.com/RezaEskandarii/fxworker/internal/pipeline"
	"github.com/RezaEskandarii/fxworker/internal/producer"
	"github.com/RezaEskandarii/fxworker/internal/queue"
	"github.com/RezaEskandarii/fxworker/internal/rates"
	"github.com/RezaEskandarii/fxworker/internal/store"
	"github.com/RezaEskandarii/fxworker/internal/store/postgres"
	redisstore "github.com/RezaEskandarii/fxworker/internal/store/redis"
	"github.com/RezaEskandarii/fxworker/internal/worker"
	"github.com/RezaEskandarii/fxworker/types/config"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// Container holds the process-wide pieces and builds the per-worker ones.
// Nothing that holds a connection is shared between workers.
type Container struct {
	Config  *config.FxWorkerConfig
	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	dialQueue   QueueDialer
	openStore   StoreOpener
	newProvider func(cfg config.ConverterConfig) rates.Provider
}

// NewContainer wires the collaborators for cfg. Connections are only made
// when a worker or producer is built.
func NewContainer(cfg *config.FxWorkerConfig, logger zerolog.Logger, m *metrics.Metrics, opts ...ContainerOption) *Container {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
	}
	c.dialQueue = c.dialBeanstalk
	c.openStore = openStore
	c.newProvider = func(cc config.ConverterConfig) rates.Provider { return rates.NewXE(cc) }

	for _, o := range opts {
		o(c)
	}
	return c
}

// NewWorker dials a queue connection and opens a store connection for the
// worker with the given id. It implements worker.Factory. Any connection
// error is returned right away.
func (c *Container) NewWorker(ctx context.Context, workerID int) (*worker.Worker, error) {
	logger := logging.ForWorker(c.Logger, workerID)

	q, err := c.dialQueue(c.Config.Queue.Addr(), c.Config.Queue.Tube, logger)
	if err != nil {
		return nil, err
	}

	rateStore, err := c.openStore(ctx, c.Config)
	if err != nil {
		_ = q.Close()
		return nil, err
	}

	acquirer := pipeline.New(
		c.newProvider(c.Config.Converter),
		rateStore,
		pipeline.WithLogger(logger),
	)

	controllerOpts := []worker.ControllerOption{worker.WithControllerLogger(logger)}
	if c.Metrics != nil {
		controllerOpts = append(controllerOpts, worker.WithRecorder(c.Metrics))
	}

	return &worker.Worker{
		ID:     workerID,
		Runner: worker.NewController(workerID, q, acquirer, controllerOpts...),
		Queue:  q,
		Store:  rateStore,
	}, nil
}

// NewPool returns a pool with one worker per configured id.
func (c *Container) NewPool() *worker.Pool {
	opts := []worker.PoolOption{worker.WithPoolLogger(c.Logger)}
	if c.Metrics != nil {
		opts = append(opts, worker.WithActivityRecorder(c.Metrics))
	}
	return worker.NewPool(c.Config.WorkerIDs(), c.NewWorker, opts...)
}

// Migrate prepares the rate table when the Postgres driver is selected.
func (c *Container) Migrate(ctx context.Context) error {
	if c.Config.StorageDriver != config.Postgres {
		return nil
	}

	db, err := openPostgresDB(ctx, c.Config.PostgresConfig.ConnectionUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	return postgres.Migrate(ctx, db, lock.NewPostgresDistributedLockManager(db), c.Logger)
}

// NewProducer dials the producer's own queue connection. With the Postgres
// driver the seed lock keeps concurrent producers from seeding the same tick.
// The returned func releases every connection the producer holds.
func (c *Container) NewProducer(ctx context.Context) (*producer.Producer, func() error, error) {
	q, err := c.dialQueue(c.Config.Queue.Addr(), c.Config.Queue.Tube, c.Logger)
	if err != nil {
		return nil, nil, err
	}

	opts := []producer.Option{producer.WithLogger(c.Logger)}
	closeAll := q.Close

	if c.Config.StorageDriver == config.Postgres {
		db, err := openPostgresDB(ctx, c.Config.PostgresConfig.ConnectionUrl)
		if err != nil {
			_ = q.Close()
			return nil, nil, err
		}
		opts = append(opts, producer.WithLockManager(lock.NewPostgresDistributedLockManager(db)))
		closeAll = func() error {
			dbErr := db.Close()
			if err := q.Close(); err != nil {
				return err
			}
			return dbErr
		}
	}

	return producer.New(q, c.Config.FirstTaskID, opts...), closeAll, nil
}

func (c *Container) dialBeanstalk(addr, tube string, logger zerolog.Logger) (queue.Queue, error) {
	b, err := queue.NewBeanstalk(addr, tube)
	if err != nil {
		return nil, err
	}
	b.OnReserveError = func(err error) {
		logger.Warn().Err(err).Msg("reserve failed, retrying")
	}
	return b, nil
}

// openStore opens a dedicated store connection for the configured driver.
func openStore(ctx context.Context, cfg *config.FxWorkerConfig) (store.RateStore, error) {
	switch cfg.StorageDriver {
	case config.Postgres:
		return postgres.Open(ctx, cfg.PostgresConfig.ConnectionUrl)
	case config.Redis:
		return redisstore.Open(ctx, cfg.RedisConfig.Address, cfg.RedisConfig.Password, cfg.RedisConfig.DB)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %v", cfg.StorageDriver)
	}
}

func openPostgresDB(ctx context.Context, connectionURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connectionURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
