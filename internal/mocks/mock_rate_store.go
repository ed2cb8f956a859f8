package mocks

import (
	"context"
	"sync"

	"github.com/RezaEskandarii/fxworker/types"
)

// MockRateStore is a mock implementation of store.RateStore for testing.
type MockRateStore struct {
	SaveFunc   func(ctx context.Context, rec types.RateRecord) (string, error)
	RemoveFunc func(ctx context.Context, ref string) error
	PingFunc   func(ctx context.Context) error
	CloseFunc  func() error

	mu     sync.Mutex
	Saved  []types.RateRecord
	saves  int
	Closed int
}

func (m *MockRateStore) Save(ctx context.Context, rec types.RateRecord) (string, error) {
	m.mu.Lock()
	m.saves++
	m.mu.Unlock()
	if m.SaveFunc != nil {
		ref, err := m.SaveFunc(ctx, rec)
		if err == nil {
			m.mu.Lock()
			m.Saved = append(m.Saved, rec)
			m.mu.Unlock()
		}
		return ref, err
	}
	m.mu.Lock()
	m.Saved = append(m.Saved, rec)
	m.mu.Unlock()
	return "1", nil
}

func (m *MockRateStore) Remove(ctx context.Context, ref string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, ref)
	}
	return nil
}

func (m *MockRateStore) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func (m *MockRateStore) Close() error {
	m.mu.Lock()
	m.Closed++
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// SaveCalls is the number of Save attempts, successful or not.
func (m *MockRateStore) SaveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// ClosedCount is the number of Close calls.
func (m *MockRateStore) ClosedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Closed
}
