// Package retry runs an operation immediately again when it fails, up to a
// fixed number of extra attempts, and reports a tagged outcome.
//
// Attempt counts live on the stack of a single Do call. Two operations of
// the same kind never share a budget, even on the same connection.
package retry

import (
	"context"
	"time"

	"github.com/RezaEskandarii/fxworker/constants"
	"github.com/cenkalti/backoff/v5"
)

type Outcome int

const (
	// Success means one of the attempts returned nil.
	Success Outcome = iota
	// TransientFailure means the operation failed but the budget was not
	// spent, which only happens when the context is canceled between attempts.
	TransientFailure
	// PermanentFailure means every attempt in the budget failed.
	PermanentFailure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case TransientFailure:
		return "transient_failure"
	case PermanentFailure:
		return "permanent_failure"
	}
	return "unknown"
}

// Result is what a Do call ends with. Err is the last error seen and is nil
// only on Success.
type Result struct {
	Outcome  Outcome
	Attempts int
	Err      error
}

func (r Result) OK() bool { return r.Outcome == Success }

// Policy bounds the number of extra attempts. There is no delay between
// attempts.
type Policy struct {
	MaxTries int

	// MaxElapsedTime stops retrying once the attempts have taken this long.
	// Zero means the budget is bounded by MaxTries alone.
	MaxElapsedTime time.Duration

	// OnRetry, if set, is called after each failed attempt that will be
	// followed by another one.
	OnRetry func(attempt int, err error)
}

// Default returns the policy used for queue mutations and rate saves.
func Default() Policy {
	return Policy{MaxTries: constants.MaxTries}
}

// Budget is the total number of calls Do makes before giving up.
func (p Policy) Budget() int {
	if p.MaxTries < 0 {
		return 1
	}
	return p.MaxTries + 1
}

// Do calls op until it succeeds or the budget is spent.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) Result {
	budget := p.Budget()
	attempts := 0

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if attempts > 0 {
			if cerr := ctx.Err(); cerr != nil {
				return struct{}{}, backoff.Permanent(cerr)
			}
		}
		attempts++
		return struct{}{}, op(ctx)
	}, p.options(func(err error, _ time.Duration) {
		if p.OnRetry != nil {
			p.OnRetry(attempts, err)
		}
	})...)

	switch {
	case err == nil:
		return Result{Outcome: Success, Attempts: attempts}
	case attempts >= budget:
		return Result{Outcome: PermanentFailure, Attempts: attempts, Err: err}
	default:
		return Result{Outcome: TransientFailure, Attempts: attempts, Err: err}
	}
}

// options always sets the elapsed-time cap, since backoff otherwise applies
// its own 15 minute default and cuts the budget short on slow attempts.
func (p Policy) options(notify backoff.Notify) []backoff.RetryOption {
	return []backoff.RetryOption{
		backoff.WithBackOff(&backoff.ZeroBackOff{}),
		backoff.WithMaxTries(uint(p.Budget())),
		backoff.WithMaxElapsedTime(p.MaxElapsedTime),
		backoff.WithNotify(notify),
	}
}
