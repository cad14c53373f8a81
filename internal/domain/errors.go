package domain

import (
	"errors"
	"fmt"
)

// ValidationError is a user-correctable input problem. It is always
// reported synchronously to the caller and never silently coerced into a
// clamped value.
type ValidationError struct {
	// Field names the offending input field.
	Field string
	// Message is a human-readable description of the violation.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErrorf(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
