package research

import (
	"context"
	"fmt"
)

// Result is the unstructured outcome of one backend query. It is consumed
// immediately by the profile parser and never persisted.
type Result struct {
	// Backend is the tag of the backend that produced the text.
	Backend string

	// Text is the raw response blob. No schema is assumed.
	Text string
}

// Backend is one external research provider. Implementations are
// independent and failure-isolated: an error from one backend never
// prevents the others from being queried.
type Backend interface {
	// Name returns the backend tag used in record source annotations.
	Name() string

	// Query runs a free-text search. Implementations apply their own
	// timeout on top of ctx; a timeout surfaces as a *Error.
	Query(ctx context.Context, text string) (*Result, error)
}

// Error is a failed backend call. Status is the upstream HTTP status when
// one was received, 0 otherwise.
type Error struct {
	Backend string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Backend, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Message)
}

// queryErr wraps a transport-level failure (including timeouts) into a
// backend error so callers handle every backend failure uniformly.
func queryErr(backend string, err error) *Error {
	return &Error{Backend: backend, Message: err.Error()}
}
