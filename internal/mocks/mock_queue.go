package mocks

import (
	"context"
	"sync"
	"time"
)

// PutCall records one Put on MockQueue.
type PutCall struct {
	Body     []byte
	Priority uint32
	Delay    time.Duration
	TTR      time.Duration
}

// MockQueue is a mock implementation of queue.Queue for testing.
type MockQueue struct {
	ReserveFunc func(ctx context.Context) (uint64, []byte, error)
	PutFunc     func(ctx context.Context, body []byte, priority uint32, delay, ttr time.Duration) (uint64, error)
	DeleteFunc  func(ctx context.Context, handle uint64) error
	BuryFunc    func(ctx context.Context, handle uint64, priority uint32) error
	CloseFunc   func() error

	mu      sync.Mutex
	Puts    []PutCall
	Deletes []uint64
	Buries  []uint64
	Closed  int
}

func (m *MockQueue) Reserve(ctx context.Context) (uint64, []byte, error) {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx)
	}
	<-ctx.Done()
	return 0, nil, ctx.Err()
}

func (m *MockQueue) Put(ctx context.Context, body []byte, priority uint32, delay, ttr time.Duration) (uint64, error) {
	m.mu.Lock()
	m.Puts = append(m.Puts, PutCall{Body: body, Priority: priority, Delay: delay, TTR: ttr})
	m.mu.Unlock()
	if m.PutFunc != nil {
		return m.PutFunc(ctx, body, priority, delay, ttr)
	}
	return 1, nil
}

func (m *MockQueue) Delete(ctx context.Context, handle uint64) error {
	m.mu.Lock()
	m.Deletes = append(m.Deletes, handle)
	m.mu.Unlock()
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, handle)
	}
	return nil
}

func (m *MockQueue) Bury(ctx context.Context, handle uint64, priority uint32) error {
	m.mu.Lock()
	m.Buries = append(m.Buries, handle)
	m.mu.Unlock()
	if m.BuryFunc != nil {
		return m.BuryFunc(ctx, handle, priority)
	}
	return nil
}

func (m *MockQueue) Close() error {
	m.mu.Lock()
	m.Closed++
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// PutCalls returns a copy of the recorded puts.
func (m *MockQueue) PutCalls() []PutCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PutCall(nil), m.Puts...)
}

// DeleteCalls returns a copy of the recorded deletes.
func (m *MockQueue) DeleteCalls() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint64(nil), m.Deletes...)
}

// BuryCalls returns a copy of the recorded buries.
func (m *MockQueue) BuryCalls() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint64(nil), m.Buries...)
}

// Jobs returns a ReserveFunc that hands out the given bodies in order with
// handles starting at 1, then blocks until ctx is canceled.
func Jobs(bodies ...string) func(ctx context.Context) (uint64, []byte, error) {
	var mu sync.Mutex
	next := 0
	return func(ctx context.Context) (uint64, []byte, error) {
		mu.Lock()
		if next < len(bodies) {
			next++
			body := bodies[next-1]
			mu.Unlock()
			return uint64(next), []byte(body), nil
		}
		mu.Unlock()
		<-ctx.Done()
		return 0, nil, ctx.Err()
	}
}
