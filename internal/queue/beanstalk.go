package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beanstalkd/go-beanstalk"
)

const (
	dialTimeout = 5 * time.Second

	// reserveWindow bounds a single reserve-with-timeout so a canceled
	// context is noticed. A ready job is still returned immediately.
	reserveWindow = 5 * time.Second

	reserveRetryPause = 250 * time.Millisecond
)

// Beanstalk is a Queue backed by one beanstalkd connection. Puts go to the
// configured tube and reservations watch only that tube, so the server's
// default tube is ignored.
type Beanstalk struct {
	conn  *beanstalk.Conn
	tube  *beanstalk.Tube
	tubes *beanstalk.TubeSet

	// OnReserveError is called for every server reply that made a
	// reservation attempt fail and be retried.
	OnReserveError func(err error)
}

// NewBeanstalk connects to addr. Connection failures are returned as is;
// callers decide whether to retry.
func NewBeanstalk(addr, tube string) (*Beanstalk, error) {
	conn, err := beanstalk.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to beanstalkd %s: %w", addr, err)
	}
	return &Beanstalk{
		conn:  conn,
		tube:  beanstalk.NewTube(conn, tube),
		tubes: beanstalk.NewTubeSet(conn, tube),
	}, nil
}

func (b *Beanstalk) Reserve(ctx context.Context) (uint64, []byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}

		id, body, err := b.tubes.Reserve(reserveWindow)
		if err == nil {
			return id, body, nil
		}
		if isReserveTimeout(err) {
			continue
		}
		if !isTransient(err) {
			return 0, nil, fmt.Errorf("reserve: %w", err)
		}

		if b.OnReserveError != nil {
			b.OnReserveError(err)
		}
		select {
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		case <-time.After(reserveRetryPause):
		}
	}
}

func (b *Beanstalk) Put(_ context.Context, body []byte, priority uint32, delay, ttr time.Duration) (uint64, error) {
	id, err := b.tube.Put(body, priority, delay, ttr)
	if err != nil {
		return 0, fmt.Errorf("put: %w", err)
	}
	return id, nil
}

func (b *Beanstalk) Delete(_ context.Context, handle uint64) error {
	if err := b.conn.Delete(handle); err != nil {
		return fmt.Errorf("delete %d: %w", handle, err)
	}
	return nil
}

func (b *Beanstalk) Bury(_ context.Context, handle uint64, priority uint32) error {
	if err := b.conn.Bury(handle, priority); err != nil {
		return fmt.Errorf("bury %d: %w", handle, err)
	}
	return nil
}

func (b *Beanstalk) Close() error {
	return b.conn.Close()
}

// serverError extracts the beanstalkd reply error from a ConnError.
func serverError(err error) error {
	var cerr beanstalk.ConnError
	if errors.As(err, &cerr) {
		return cerr.Err
	}
	return err
}

func isReserveTimeout(err error) bool {
	e := serverError(err)
	return e == beanstalk.ErrTimeout || e == beanstalk.ErrDeadline
}

// isTransient reports server replies after which the same connection can
// be used again.
func isTransient(err error) bool {
	switch serverError(err) {
	case beanstalk.ErrOOM, beanstalk.ErrInternal, beanstalk.ErrDraining:
		return true
	}
	return false
}
