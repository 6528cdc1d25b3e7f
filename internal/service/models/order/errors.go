package order

import "fmt"

// ValidationError covers malformed checkout requests: the caller's
// fault, fixable by resubmission.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order request: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PersistenceError is a local store failure. It is always surfaced to
// the caller and never silently retried at this layer.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("order persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
