package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when no record has the requested id
var ErrNotFound = errors.New("record not found")

// ValidationError reports a record field outside its allowed values
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// NotFoundError is returned when an operation targets an unknown record id
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %d not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
