// Package pipeline turns a currency pair into a stored exchange rate.
package pipeline

import (
	"context"
	"time"

	"github.com/RezaEskandarii/fxworker/custom_errors"
	"github.com/RezaEskandarii/fxworker/internal/rates"
	"github.com/RezaEskandarii/fxworker/internal/retry"
	"github.com/RezaEskandarii/fxworker/internal/store"
	"github.com/RezaEskandarii/fxworker/types"
	"github.com/rs/zerolog"
)

// Stages reported in custom_errors.FetchError.
const (
	StageProvider = "provider"
	StageStore    = "store"
)

// Result is a fetched rate together with the reference of its stored record.
type Result struct {
	Rate types.RateResult
	Ref  string
}

// Pipeline fetches a rate and persists it. Any failure, whether the provider
// could not answer or the answer could not be saved, is reported as a
// *custom_errors.FetchError and the fetched value is dropped.
type Pipeline struct {
	provider rates.Provider
	store    store.RateStore
	policy   retry.Policy
	now      func() time.Time
	logger   zerolog.Logger
}

type Option func(*Pipeline)

// WithRetryPolicy replaces the policy around Save.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(p *Pipeline) { p.policy = policy }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

func New(provider rates.Provider, rateStore store.RateStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		provider: provider,
		store:    rateStore,
		policy:   retry.Default(),
		now:      time.Now,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Acquire runs one fetch-and-save for the pair. The provider is called once;
// Save is retried under the pipeline's policy.
func (p *Pipeline) Acquire(ctx context.Context, taskID int64, from, to string) (*Result, error) {
	rate, err := p.provider.Query(ctx, from, to)
	if err != nil {
		return nil, &custom_errors.FetchError{Stage: StageProvider, Err: err}
	}

	fetched := types.RateResult{From: from, To: to, Rate: rate, FetchedAt: p.now()}
	rec := types.NewRateRecord(taskID, fetched)

	policy := p.policy
	policy.OnRetry = func(attempt int, err error) {
		p.logger.Debug().Err(err).Int("attempt", attempt).Int64("task_id", taskID).Msg("save rate failed, retrying")
	}

	var ref string
	res := policy.Do(ctx, func(ctx context.Context) error {
		var err error
		ref, err = p.store.Save(ctx, rec)
		return err
	})
	if !res.OK() {
		return nil, &custom_errors.FetchError{Stage: StageStore, Err: res.Err}
	}

	return &Result{Rate: fetched, Ref: ref}, nil
}
