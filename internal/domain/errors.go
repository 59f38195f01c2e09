package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound marks a stale identifier (account, transaction, session,
// enrollment). Handlers translate it to 404.
var ErrNotFound = errors.New("not found")

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field-level failures for malformed input. It is
// raised before any computation and never after partial application.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field failure.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Any reports whether any failure was recorded.
func (e *ValidationError) Any() bool {
	return len(e.Fields) > 0
}

// PreconditionError marks an operation attempted against state that does not
// admit it (finishing a session that is not in progress, mutating a
// reconciled transaction). Rejected atomically with no partial state change.
type PreconditionError struct {
	Op     string
	Reason string
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPrecondition reports whether err is (or wraps) a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
