// Package worker runs the per-job lifecycle loop and the pool of workers
// around it.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/RezaEskandarii/fxworker/constants"
	"github.com/RezaEskandarii/fxworker/custom_errors"
	"github.com/RezaEskandarii/fxworker/internal/metrics"
	"github.com/RezaEskandarii/fxworker/internal/pipeline"
	"github.com/RezaEskandarii/fxworker/internal/queue"
	"github.com/RezaEskandarii/fxworker/internal/retry"
	"github.com/RezaEskandarii/fxworker/internal/state"
	"github.com/RezaEskandarii/fxworker/types"
	"github.com/rs/zerolog"
)

// Acquirer resolves and stores a rate for one pair.
type Acquirer interface {
	Acquire(ctx context.Context, taskID int64, from, to string) (*pipeline.Result, error)
}

// Recorder receives lifecycle events. *metrics.Metrics implements it.
type Recorder interface {
	JobReserved()
	JobFinished()
	JobBuried()
	JobRequeued()
	JobRejected()
	RateFetch(result string)
}

// Controller reserves one job at a time and moves it to finished, buried or
// requeued. Queue mutations that exhaust their retries end Run with an error;
// failed rate acquisitions only bump the job's fail counter.
type Controller struct {
	id       int
	reserve  queue.Queue
	mutate   queue.Queue
	acquirer Acquirer
	recorder Recorder
	policy   retry.Policy
	logger   zerolog.Logger
}

type ControllerOption func(*Controller)

func WithRecorder(r Recorder) ControllerOption {
	return func(c *Controller) { c.recorder = r }
}

func WithControllerLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) { c.logger = logger }
}

// WithQueueRetryPolicy replaces the policy around delete, bury and put.
func WithQueueRetryPolicy(policy retry.Policy) ControllerOption {
	return func(c *Controller) { c.policy = policy }
}

func NewController(id int, q queue.Queue, acquirer Acquirer, opts ...ControllerOption) *Controller {
	c := &Controller{
		id:       id,
		reserve:  q,
		acquirer: acquirer,
		recorder: nopRecorder{},
		policy:   retry.Default(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var observer queue.RetryObserver
	if o, ok := c.recorder.(queue.RetryObserver); ok {
		observer = o
	}
	c.mutate = queue.WithRetry(q, c.policy, &retryLogger{logger: c.logger, next: observer})
	return c
}

func (c *Controller) ID() int { return c.id }

// Run loops until ctx is canceled or a queue mutation fails permanently. A
// canceled ctx ends the loop with a nil error.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if _, err := c.Cycle(ctx); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		}
	}
}

// Cycle handles exactly one job and reports the state it left that job in.
// Once a job is reserved the rest of the cycle ignores cancellation, so a
// shutdown never leaves a job deleted but not put back.
func (c *Controller) Cycle(ctx context.Context) (state.JobState, error) {
	handle, body, err := c.reserve.Reserve(ctx)
	if err != nil {
		return state.StateReserved, err
	}
	c.recorder.JobReserved()
	work := context.WithoutCancel(ctx)

	job, err := types.DecodeJob(handle, body)
	if err != nil {
		c.logger.Error().Err(err).Uint64("handle", handle).Bytes("body", body).Msg("Rejected")
		c.recorder.JobRejected()
		if err := c.mutate.Bury(work, handle, constants.BuryPriority); err != nil {
			return state.StateReserved, err
		}
		return state.StateBuried, nil
	}

	log := c.logger.With().
		Int64("task_id", job.TaskID).
		Str("from", job.From).
		Str("to", job.To).
		Uint64("handle", job.Handle).
		Logger()
	log.Debug().Int("success", job.Success).Int("fail", job.Fail).Msg("Reserved")

	next := Decide(job)
	if !state.IsValidTransition(state.StateReserved, next) {
		return state.StateReserved, fmt.Errorf("job %d: illegal transition to %s", job.Handle, next)
	}

	switch next {
	case state.StateFinished:
		if err := c.mutate.Delete(work, job.Handle); err != nil {
			return state.StateReserved, err
		}
		log.Debug().Int("success", job.Success).Msg("Finished")
		c.recorder.JobFinished()
		return state.StateFinished, nil

	case state.StateBuried:
		if err := c.mutate.Bury(work, job.Handle, constants.BuryPriority); err != nil {
			return state.StateReserved, err
		}
		log.Debug().Int("fail", job.Fail).Msg("Buried")
		c.recorder.JobBuried()
		return state.StateBuried, nil
	}

	job = c.work(work, log, job)
	if err := c.requeue(work, job); err != nil {
		return state.StateReserved, err
	}
	log.Debug().
		Int("success", job.Success).
		Int("fail", job.Fail).
		Int("delay", delaySeconds(job.Delay)).
		Msg("Requeued")
	c.recorder.JobRequeued()
	return state.StateRequeued, nil
}

func (c *Controller) work(ctx context.Context, log zerolog.Logger, job types.Job) types.Job {
	res, err := c.acquirer.Acquire(ctx, job.TaskID, job.From, job.To)
	if err != nil {
		result := metrics.ResultProviderError
		var fe *custom_errors.FetchError
		if errors.As(err, &fe) && fe.Stage == pipeline.StageStore {
			result = metrics.ResultStoreError
		}
		c.recorder.RateFetch(result)
		log.Debug().Err(err).Msg("Get rate fail")
		return Advance(job, false)
	}

	c.recorder.RateFetch(metrics.ResultSuccess)
	log.Debug().Str("rate", res.Rate.Rate).Str("ref", res.Ref).Msg("Get rate success")
	job = Advance(job, true)
	job.RecordRef = res.Ref
	return job
}

// requeue replaces the current entry with one carrying the updated counters.
// The new entry gets a new handle.
func (c *Controller) requeue(ctx context.Context, job types.Job) error {
	body, err := types.EncodeJob(job)
	if err != nil {
		return fmt.Errorf("encode job %d: %w", job.TaskID, err)
	}
	if err := c.mutate.Delete(ctx, job.Handle); err != nil {
		return err
	}
	_, err = c.mutate.Put(ctx, body, constants.RequeuePriority, job.Delay, constants.JobTTR)
	return err
}

// retryLogger logs every retried queue mutation and forwards it.
type retryLogger struct {
	logger zerolog.Logger
	next   queue.RetryObserver
}

func (r *retryLogger) QueueRetry(op string, attempt int, err error) {
	r.logger.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("queue operation failed, retrying")
	if r.next != nil {
		r.next.QueueRetry(op, attempt, err)
	}
}

func (r *retryLogger) QueueFailure(op string) {
	r.logger.Error().Str("op", op).Msg("queue operation failed permanently")
	if r.next != nil {
		r.next.QueueFailure(op)
	}
}

type nopRecorder struct{}

func (nopRecorder) JobReserved()     {}
func (nopRecorder) JobFinished()     {}
func (nopRecorder) JobBuried()       {}
func (nopRecorder) JobRequeued()     {}
func (nopRecorder) JobRejected()     {}
func (nopRecorder) RateFetch(string) {}
