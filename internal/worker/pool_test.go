package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RezaEskandarii/fxworker/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

type activity struct {
	started atomic.Int32
	stopped atomic.Int32
}

func (a *activity) WorkerStarted() { a.started.Add(1) }
func (a *activity) WorkerStopped() { a.stopped.Add(1) }

func TestWorker_CloseIsIdempotent(t *testing.T) {
	q := &mocks.MockQueue{}
	s := &mocks.MockRateStore{}
	w := &Worker{ID: 1, Queue: q, Store: s}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, 1, s.ClosedCount())
	assert.Equal(t, 1, q.Closed)
}

func TestWorker_CloseJoinsErrors(t *testing.T) {
	storeErr := errors.New("store gone")
	queueErr := errors.New("queue gone")
	w := &Worker{
		Queue: &mocks.MockQueue{CloseFunc: func() error { return queueErr }},
		Store: &mocks.MockRateStore{CloseFunc: func() error { return storeErr }},
	}

	err := w.Close()
	assert.ErrorIs(t, err, storeErr)
	assert.ErrorIs(t, err, queueErr)
}

func TestPool_RunsEveryWorkerWithOwnConnections(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var mu sync.Mutex
	stores := map[int]*mocks.MockRateStore{}
	queues := map[int]*mocks.MockQueue{}
	var running sync.WaitGroup
	running.Add(3)

	factory := func(ctx context.Context, id int) (*Worker, error) {
		s, q := &mocks.MockRateStore{}, &mocks.MockQueue{}
		mu.Lock()
		stores[id], queues[id] = s, q
		mu.Unlock()
		return &Worker{ID: id, Store: s, Queue: q, Runner: runnerFunc(func(ctx context.Context) error {
			running.Done()
			return blockUntilDone(ctx)
		})}, nil
	}

	act := &activity{}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- NewPool([]int{1000, 1001, 1002}, factory, WithActivityRecorder(act)).Run(ctx)
	}()

	running.Wait()
	assert.Equal(t, int32(3), act.started.Load())
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pool did not stop")
	}

	assert.Len(t, stores, 3)
	for id := range stores {
		assert.Equal(t, 1, stores[id].ClosedCount())
		assert.Equal(t, 1, queues[id].Closed)
	}
	assert.Equal(t, int32(3), act.stopped.Load())
}

func TestPool_FatalWorkerStopsSiblings(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fatal := errors.New("delete job 7: 6 attempts: NOT_FOUND")
	var mu sync.Mutex
	closed := map[int]*mocks.MockRateStore{}

	factory := func(ctx context.Context, id int) (*Worker, error) {
		s := &mocks.MockRateStore{}
		mu.Lock()
		closed[id] = s
		mu.Unlock()

		runner := runnerFunc(blockUntilDone)
		if id == 1001 {
			runner = func(ctx context.Context) error { return fatal }
		}
		return &Worker{ID: id, Store: s, Queue: &mocks.MockQueue{}, Runner: runner}, nil
	}

	err := NewPool([]int{1000, 1001, 1002}, factory).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fatal)
	assert.Contains(t, err.Error(), "worker 1001")

	for _, s := range closed {
		assert.Equal(t, 1, s.ClosedCount())
	}
}

func TestPool_InitErrorIsNotRetried(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dialErr := errors.New("dial tcp 127.0.0.1:11300: connect: connection refused")
	var attempts atomic.Int32
	factory := func(ctx context.Context, id int) (*Worker, error) {
		attempts.Add(1)
		return nil, dialErr
	}

	err := NewPool([]int{1000}, factory).Run(context.Background())
	assert.ErrorIs(t, err, dialErr)
	assert.Contains(t, err.Error(), "init worker 1000")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestPool_ControllerFatalError(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := &mocks.MockRateStore{}
	q := &mocks.MockQueue{
		ReserveFunc: mocks.Jobs(`{"task_id":1,"from":"HKD","to":"USD","success":10}`),
		DeleteFunc:  func(ctx context.Context, handle uint64) error { return errors.New("NOT_FOUND") },
	}
	factory := func(ctx context.Context, id int) (*Worker, error) {
		return &Worker{ID: id, Store: s, Queue: q, Runner: NewController(id, q, &stubAcquirer{})}, nil
	}

	err := NewPool([]int{1000}, factory).Run(context.Background())
	require.Error(t, err)
	assert.Len(t, q.DeleteCalls(), 6)
	assert.Equal(t, 1, s.ClosedCount())
	assert.Equal(t, 1, q.Closed)
}
