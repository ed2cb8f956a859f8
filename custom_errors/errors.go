package custom_errors

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed is returned when a rate could not be fetched or could not
	// be persisted after it was fetched. Callers cannot tell the two apart.
	ErrFetchFailed = errors.New("get exchange rate failed")

	// ErrPermanentFailure marks a queue mutation that kept failing after its
	// whole retry budget was spent.
	ErrPermanentFailure = errors.New("retries exhausted")

	// ErrMalformedRate is returned by the rate parser when the provider text
	// does not start with a number.
	ErrMalformedRate = errors.New("malformed exchange rate")
)

// QueueOpError describes a queue mutation (delete, bury, put) that failed
// permanently.
type QueueOpError struct {
	Op       string
	Handle   uint64
	Attempts int
	Err      error
}

func (e *QueueOpError) Error() string {
	if e.Handle == 0 {
		return fmt.Sprintf("%s job: %d attempts: %v", e.Op, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s job %d: %d attempts: %v", e.Op, e.Handle, e.Attempts, e.Err)
}

func (e *QueueOpError) Unwrap() []error {
	return []error{ErrPermanentFailure, e.Err}
}

// FetchError wraps the cause of a failed rate acquisition. Stage is either
// "provider" or "store".
type FetchError struct {
	Stage string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrFetchFailed.Error(), e.Stage, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailed, e.Err}
}
