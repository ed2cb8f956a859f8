package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/RezaEskandarii/fxworker/internal/queue"
	"github.com/RezaEskandarii/fxworker/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Runner is the loop a worker executes. *Controller implements it.
type Runner interface {
	Run(ctx context.Context) error
}

// Worker is one loop together with the connections only it uses.
type Worker struct {
	ID     int
	Runner Runner
	Queue  queue.Queue
	Store  store.RateStore

	closeOnce sync.Once
	closeErr  error
}

// Close releases the store and then the queue connection. It is safe to call
// more than once.
func (w *Worker) Close() error {
	w.closeOnce.Do(func() {
		var errs []error
		if w.Store != nil {
			if err := w.Store.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close store: %w", err))
			}
		}
		if w.Queue != nil {
			if err := w.Queue.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close queue: %w", err))
			}
		}
		w.closeErr = errors.Join(errs...)
	})
	return w.closeErr
}

// Factory builds the worker with the given id, dialing its own connections.
type Factory func(ctx context.Context, workerID int) (*Worker, error)

// ActivityRecorder tracks how many workers are inside their loop.
type ActivityRecorder interface {
	WorkerStarted()
	WorkerStopped()
}

// Pool runs one worker per id. Workers share nothing; the first one to fail
// cancels the rest and its error is returned from Run.
type Pool struct {
	ids      []int
	factory  Factory
	activity ActivityRecorder
	logger   zerolog.Logger
}

type PoolOption func(*Pool)

func WithActivityRecorder(r ActivityRecorder) PoolOption {
	return func(p *Pool) { p.activity = r }
}

func WithPoolLogger(logger zerolog.Logger) PoolOption {
	return func(p *Pool) { p.logger = logger }
}

func NewPool(ids []int, factory Factory, opts ...PoolOption) *Pool {
	p := &Pool{
		ids:     ids,
		factory: factory,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run blocks until every worker has returned. It returns nil when ctx was
// canceled and no worker failed.
func (p *Pool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range p.ids {
		g.Go(func() error {
			return p.runWorker(gctx, id)
		})
	}
	return g.Wait()
}

func (p *Pool) runWorker(ctx context.Context, id int) error {
	logger := p.logger.With().Int("worker_id", id).Logger()

	w, err := p.factory(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msg("worker init failed")
		return fmt.Errorf("init worker %d: %w", id, err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Error().Err(err).Msg("worker close failed")
		}
	}()

	if p.activity != nil {
		p.activity.WorkerStarted()
		defer p.activity.WorkerStopped()
	}

	logger.Info().Msg("worker started")
	if err := w.Runner.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("worker terminated")
		return fmt.Errorf("worker %d: %w", id, err)
	}
	logger.Info().Msg("worker stopped")
	return nil
}
