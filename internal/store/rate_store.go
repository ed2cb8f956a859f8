package store

import (
	"context"
	"errors"

	"github.com/RezaEskandarii/fxworker/types"
)

// ErrRecordNotFound is returned by Remove when ref points at nothing.
var ErrRecordNotFound = errors.New("rate record not found")

// RateStore persists fetched exchange rates. Each worker owns its own store
// and its own underlying connection.
type RateStore interface {
	// Save writes rec and returns an opaque reference to the stored record.
	Save(ctx context.Context, rec types.RateRecord) (string, error)

	// Remove deletes the record behind ref.
	Remove(ctx context.Context, ref string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close closes the database
	Close() error
}
