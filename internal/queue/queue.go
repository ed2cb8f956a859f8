package queue

import (
	"context"
	"time"
)

// Queue is a single connection to a tube. Implementations are used by one
// worker at a time and need not be safe for concurrent use.
type Queue interface {
	// Reserve blocks until a job is visible in the watched tube. Transient
	// server replies are retried internally; an error means the connection
	// is unusable or ctx was canceled.
	Reserve(ctx context.Context) (handle uint64, body []byte, err error)

	// Put inserts body into the used tube and returns its new handle.
	Put(ctx context.Context, body []byte, priority uint32, delay, ttr time.Duration) (uint64, error)

	Delete(ctx context.Context, handle uint64) error

	Bury(ctx context.Context, handle uint64, priority uint32) error

	Close() error
}
