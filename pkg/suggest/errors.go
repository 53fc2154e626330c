package suggest

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned for caller misuse: empty words, negative frequencies,
// non-positive limits. Match it with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes which argument of which operation was rejected.
type InputError struct {
	Op     string
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Op, e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

func invalid(op, field, reason string) error {
	return &InputError{Op: op, Field: field, Reason: reason}
}
