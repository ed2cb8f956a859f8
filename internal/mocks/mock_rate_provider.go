package mocks

import (
	"context"
	"sync/atomic"
)

// MockRateProvider is a mock implementation of rates.Provider for testing.
type MockRateProvider struct {
	QueryFunc func(ctx context.Context, from, to string) (string, error)
	calls     atomic.Int32
}

func (m *MockRateProvider) Query(ctx context.Context, from, to string) (string, error) {
	m.calls.Add(1)
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, from, to)
	}
	return "1.00", nil
}

func (m *MockRateProvider) Calls() int {
	return int(m.calls.Load())
}
