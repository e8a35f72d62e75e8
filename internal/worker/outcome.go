package worker

import (
	"errors"
	"fmt"
)

// permanentError marks a handler failure that retrying cannot fix, such as
// a missing payload field or a dangling foreign key. The processor fails
// these jobs immediately instead of burning retry attempts on them.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the retry manager treats it as terminal.
// A nil err returns nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Permanentf is Permanent applied to a formatted error.
func Permanentf(format string, args ...any) error {
	return Permanent(fmt.Errorf(format, args...))
}

// IsPermanent reports whether err (or anything it wraps) was marked with
// Permanent. Unwrapped errors are retryable by default, matching the error
// taxonomy: only explicitly classified failures skip the retry budget.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
