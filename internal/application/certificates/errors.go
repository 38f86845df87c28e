package certificates

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the certificate does not exist. Absence is a normal
	// outcome for public verification, so callers must branch on it rather
	// than treat it as a failure.
	ErrNotFound = errors.New("Certificate not found")

	// ErrDuplicateReference means a create or update would violate
	// reference-number uniqueness.
	ErrDuplicateReference = errors.New("Reference number already exists")
)

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func missingField(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}

func malformedField(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
