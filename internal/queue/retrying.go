package queue

import (
	"context"
	"time"

	errors2 "github.com/RezaEskandarii/fxworker/custom_errors"
	"github.com/RezaEskandarii/fxworker/internal/retry"
)

// Operation names used in errors and metrics.
const (
	OpDelete = "delete"
	OpBury   = "bury"
	OpPut    = "put"
)

// RetryObserver is told about every failed attempt of a mutation and about
// the final outcome.
type RetryObserver interface {
	QueueRetry(op string, attempt int, err error)
	QueueFailure(op string)
}

// Retrying wraps the mutating calls of a Queue in a retry policy. Reserve is
// passed through untouched.
type Retrying struct {
	Queue
	policy   retry.Policy
	observer RetryObserver
}

func WithRetry(q Queue, policy retry.Policy, observer RetryObserver) *Retrying {
	return &Retrying{Queue: q, policy: policy, observer: observer}
}

func (r *Retrying) Delete(ctx context.Context, handle uint64) error {
	return r.run(ctx, OpDelete, handle, func(ctx context.Context) error {
		return r.Queue.Delete(ctx, handle)
	})
}

func (r *Retrying) Bury(ctx context.Context, handle uint64, priority uint32) error {
	return r.run(ctx, OpBury, handle, func(ctx context.Context) error {
		return r.Queue.Bury(ctx, handle, priority)
	})
}

func (r *Retrying) Put(ctx context.Context, body []byte, priority uint32, delay, ttr time.Duration) (uint64, error) {
	var id uint64
	err := r.run(ctx, OpPut, 0, func(ctx context.Context) error {
		var err error
		id, err = r.Queue.Put(ctx, body, priority, delay, ttr)
		return err
	})
	return id, err
}

func (r *Retrying) run(ctx context.Context, op string, handle uint64, fn func(context.Context) error) error {
	p := r.policy
	if r.observer != nil {
		p.OnRetry = func(attempt int, err error) {
			r.observer.QueueRetry(op, attempt, err)
		}
	}

	res := p.Do(ctx, fn)
	switch res.Outcome {
	case retry.Success:
		return nil
	case retry.PermanentFailure:
		if r.observer != nil {
			r.observer.QueueFailure(op)
		}
		return &errors2.QueueOpError{Op: op, Handle: handle, Attempts: res.Attempts, Err: res.Err}
	default:
		return res.Err
	}
}
