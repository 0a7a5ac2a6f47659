package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a resource the site or the store does not know: a probed
// character id past the populated range, or a 404 from the tracker API. It
// terminates one enumeration direction and is not an error condition.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is the store's 409 answer: the record's natural key already
// exists (or, for history, the content equals the latest entry). It is an
// expected outcome, surfaced informationally, never a failure.
var ErrDuplicate = errors.New("duplicate record")

// ErrBusTimeout reports a cross-context request that never got its response.
// The enclosing operation aborts; the operator re-triggers manually.
var ErrBusTimeout = errors.New("scraper context did not respond")

// TransientError wraps a fetch that failed for reasons other than the
// not-found marker: transport errors and unexpected statuses. Callers with a
// retry policy retry it; it is never folded into ErrNotFound.
type TransientError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// ValidationError is raised locally when a payload misses required fields;
// the request is not sent to the store.
type ValidationError struct {
	Resource string
	Missing  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s payload missing required fields %v", e.Resource, e.Missing)
}
