// Package producer inserts fresh rate jobs into the queue.
package producer

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/RezaEskandarii/fxworker/constants"
	"github.com/RezaEskandarii/fxworker/internal/lock"
	"github.com/RezaEskandarii/fxworker/internal/queue"
	"github.com/RezaEskandarii/fxworker/types"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Producer puts first-insertion jobs. These puts are not retried: a failure is
// returned to the caller as is.
type Producer struct {
	queue  queue.Queue
	nextID atomic.Int64
	locks  lock.DistributedLockManager
	logger zerolog.Logger
}

type Option func(*Producer)

// WithLockManager makes Seed take the seed lock first, so that only one of
// several producers seeds a given tick.
func WithLockManager(locks lock.DistributedLockManager) Option {
	return func(p *Producer) { p.locks = locks }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Producer) { p.logger = logger }
}

// New returns a producer that numbers tasks from firstTaskID upward.
func New(q queue.Queue, firstTaskID int64, opts ...Option) *Producer {
	p := &Producer{queue: q, logger: zerolog.Nop()}
	p.nextID.Store(firstTaskID)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Put inserts a job for the pair with no counters set.
func (p *Producer) Put(ctx context.Context, taskID int64, from, to string) (uint64, error) {
	body, err := types.EncodeJob(types.Job{TaskID: taskID, From: from, To: to})
	if err != nil {
		return 0, fmt.Errorf("encode task %d: %w", taskID, err)
	}
	handle, err := p.queue.Put(ctx, body, constants.SeedPriority, 0, constants.JobTTR)
	if err != nil {
		return 0, fmt.Errorf("put task %d: %w", taskID, err)
	}
	p.logger.Debug().Int64("task_id", taskID).Str("from", from).Str("to", to).Uint64("handle", handle).Msg("Seeded")
	return handle, nil
}

// Seed puts one job per pair, each with the next task id. It returns the
// handles of the jobs it put. When another producer holds the seed lock it
// puts nothing and returns nil.
func (p *Producer) Seed(ctx context.Context, pairs []types.CurrencyPair) ([]uint64, error) {
	if p.locks != nil {
		ok, err := p.locks.TryAcquire(ctx, constants.SeedLock)
		if err != nil {
			return nil, err
		}
		if !ok {
			p.logger.Info().Msg("seed lock held elsewhere, skipping")
			return nil, nil
		}
		defer func() {
			if err := p.locks.Release(context.WithoutCancel(ctx), constants.SeedLock); err != nil {
				p.logger.Error().Err(err).Msg("release seed lock")
			}
		}()
	}

	handles := make([]uint64, 0, len(pairs))
	for _, pair := range pairs {
		taskID := p.nextID.Add(1) - 1
		handle, err := p.Put(ctx, taskID, pair.From, pair.To)
		if err != nil {
			return handles, err
		}
		handles = append(handles, handle)
	}
	p.logger.Info().Int("jobs", len(handles)).Msg("seed finished")
	return handles, nil
}

// Schedule seeds pairs on every tick of the cron expression until ctx is
// done. A failed tick is logged and the schedule keeps running.
func (p *Producer) Schedule(ctx context.Context, expression string, pairs []types.CurrencyPair) error {
	schedule, err := scheduleParser.Parse(expression)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expression, err)
	}

	c := cron.New(cron.WithParser(scheduleParser))
	c.Schedule(schedule, cron.FuncJob(func() {
		if _, err := p.Seed(ctx, pairs); err != nil {
			p.logger.Error().Err(err).Msg("scheduled seed failed")
		}
	}))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
