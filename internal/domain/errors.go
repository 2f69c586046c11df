package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrHouseholdNotFound is returned when an update targets a household with no stored members.
	ErrHouseholdNotFound = fmt.Errorf("household does not exist: %w", ErrNotFound)
	// ErrHouseholdExists is returned when a create names a household id that already has members.
	ErrHouseholdExists = errors.New("household already exists")
	// ErrTimeout marks operations aborted because the caller's deadline expired.
	ErrTimeout = errors.New("operation timed out")
	// ErrCanceled marks operations aborted because the caller canceled them.
	ErrCanceled = errors.New("operation canceled")
)

// ValidationError reports malformed input rejected before any store I/O.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// Invalid is shorthand for building a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// DecodeError reports a stored row that cannot be mapped back to a Person.
type DecodeError struct {
	HouseholdID string
	MemberKey   string
	Field       string
	Reason      string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode row %s/%s: %s: %s", e.HouseholdID, e.MemberKey, e.Field, e.Reason)
}

// StoreError wraps a store failure that survived the retry policy, or one
// that was not worth retrying.
type StoreError struct {
	Op      string
	Pending int
	Err     error
}

func (e *StoreError) Error() string {
	if e.Pending > 0 {
		return fmt.Sprintf("store %s: %d rows not accepted: %v", e.Op, e.Pending, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ContextError translates a context failure into ErrTimeout or ErrCanceled,
// keeping the original context error in the chain. Nil stays nil.
func ContextError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	default:
		return err
	}
}
