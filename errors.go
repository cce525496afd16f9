package cachex

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/cachex/backend"
)

// ErrNotFound is returned by Get when the key holds no live object.
var ErrNotFound = backend.ErrNotFound

// InvokeError describes an operation that failed on every attempt.
type InvokeError struct {
	Op       string
	Attempts int
	Err      error // last attempt's error
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("cachex: %s failed after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
}

func (e *InvokeError) Unwrap() error { return e.Err }

// callerError reports errors caused by the request itself. Retrying them can't
// help and they say nothing about backend health.
func callerError(err error) bool {
	return errors.Is(err, backend.ErrWrongType) ||
		errors.Is(err, backend.ErrNotNumber) ||
		errors.Is(err, backend.ErrInvalidLease)
}
