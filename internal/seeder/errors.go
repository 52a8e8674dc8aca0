package seeder

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every rejected Input.
var ErrValidation = errors.New("invalid input")

// ValidationError names the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
