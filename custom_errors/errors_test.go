package custom_errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_CollectsAll(t *testing.T) {
	v := &ValidationError{}
	assert.NoError(t, v.ErrOrNil())

	v.Add(nil)
	assert.False(t, v.HasError())

	v.Add(errors.New("tube is required"))
	v.Addf("worker count must be positive, got %d", 0)

	err := v.ErrOrNil()
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "tube is required")
	assert.Contains(t, err.Error(), "got 0")
}

func TestQueueOpError_Unwrap(t *testing.T) {
	cause := errors.New("NOT_FOUND")
	err := error(&QueueOpError{Op: "delete", Handle: 42, Attempts: 6, Err: cause})

	assert.ErrorIs(t, err, ErrPermanentFailure)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "delete job 42: 6 attempts: NOT_FOUND", err.Error())
}

func TestFetchError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&FetchError{Stage: "store", Err: cause})

	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, cause)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "store", fe.Stage)
}
