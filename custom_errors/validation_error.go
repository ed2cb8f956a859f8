package custom_errors

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError collects every configuration problem found in one pass so
// the operator can fix them together.
type ValidationError struct {
	Errors []error `json:"errors"`
}

func (v *ValidationError) Add(err error) {
	if err == nil {
		return
	}
	v.Errors = append(v.Errors, err)
}

// Addf records a formatted validation failure.
func (v *ValidationError) Addf(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Errorf(format, args...))
}

func (v *ValidationError) HasError() bool {
	return len(v.Errors) > 0
}

// ErrOrNil returns v when it holds at least one error.
func (v *ValidationError) ErrOrNil() error {
	if v.HasError() {
		return v
	}
	return nil
}

func (v *ValidationError) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(v.Errors))
	for _, err := range v.Errors {
		msgs = append(msgs, err.Error())
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

func (v *ValidationError) Unwrap() []error {
	return v.Errors
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
