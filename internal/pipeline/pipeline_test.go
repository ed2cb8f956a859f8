package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RezaEskandarii/fxworker/custom_errors"
	"github.com/RezaEskandarii/fxworker/internal/mocks"
	"github.com/RezaEskandarii/fxworker/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestAcquire_Success(t *testing.T) {
	provider := &mocks.MockRateProvider{
		QueryFunc: func(ctx context.Context, from, to string) (string, error) {
			assert.Equal(t, "HKD", from)
			assert.Equal(t, "USD", to)
			return "0.13", nil
		},
	}
	rateStore := &mocks.MockRateStore{
		SaveFunc: func(ctx context.Context, rec types.RateRecord) (string, error) {
			return "42", nil
		},
	}

	res, err := New(provider, rateStore, WithClock(clock)).Acquire(context.Background(), 5, "HKD", "USD")
	require.NoError(t, err)
	assert.Equal(t, "42", res.Ref)
	assert.Equal(t, types.RateResult{From: "HKD", To: "USD", Rate: "0.13", FetchedAt: fixedNow}, res.Rate)

	require.Len(t, rateStore.Saved, 1)
	assert.Equal(t, types.RateRecord{TaskID: 5, From: "HKD", To: "USD", Rate: "0.13", CreatedAt: fixedNow}, rateStore.Saved[0])
}

func TestAcquire_ProviderFailure(t *testing.T) {
	boom := errors.New("dial tcp: i/o timeout")
	provider := &mocks.MockRateProvider{
		QueryFunc: func(ctx context.Context, from, to string) (string, error) { return "", boom },
	}
	rateStore := &mocks.MockRateStore{}

	_, err := New(provider, rateStore).Acquire(context.Background(), 5, "HKD", "USD")
	require.Error(t, err)
	assert.ErrorIs(t, err, custom_errors.ErrFetchFailed)
	assert.ErrorIs(t, err, boom)

	var fe *custom_errors.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StageProvider, fe.Stage)
	assert.Equal(t, 0, rateStore.SaveCalls())
	assert.Equal(t, 1, provider.Calls())
}

func TestAcquire_SaveRecoversWithinBudget(t *testing.T) {
	calls := 0
	rateStore := &mocks.MockRateStore{
		SaveFunc: func(ctx context.Context, rec types.RateRecord) (string, error) {
			calls++
			if calls < 6 {
				return "", errors.New("connection refused")
			}
			return "7", nil
		},
	}
	provider := &mocks.MockRateProvider{}

	res, err := New(provider, rateStore).Acquire(context.Background(), 1, "EUR", "GBP")
	require.NoError(t, err)
	assert.Equal(t, "7", res.Ref)
	assert.Equal(t, 6, rateStore.SaveCalls())
	assert.Equal(t, 1, provider.Calls())
}

func TestAcquire_SaveExhausted(t *testing.T) {
	boom := errors.New("connection refused")
	rateStore := &mocks.MockRateStore{
		SaveFunc: func(ctx context.Context, rec types.RateRecord) (string, error) { return "", boom },
	}
	provider := &mocks.MockRateProvider{}

	_, err := New(provider, rateStore).Acquire(context.Background(), 1, "EUR", "GBP")
	require.Error(t, err)
	assert.ErrorIs(t, err, custom_errors.ErrFetchFailed)
	assert.ErrorIs(t, err, boom)

	var fe *custom_errors.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StageStore, fe.Stage)
	assert.Equal(t, 6, rateStore.SaveCalls())
	assert.Equal(t, 1, provider.Calls())
}
