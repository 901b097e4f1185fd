package validation

import (
	"fmt"

	"github.com/bcnelson/yatube/internal/domain"
)

// ValidationError represents a validation error for a specific field.
// Err, when set, is the underlying cause (e.g. domain.ErrNotFound for a
// reference to a missing group).
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ValidationErrors is a collection of validation errors.
// It matches domain.ErrInvalidInput with errors.Is, as well as the cause of
// any member error.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e[0].Error(), len(e)-1)
}

func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(e)+1)
	errs = append(errs, domain.ErrInvalidInput)
	for _, ve := range e {
		errs = append(errs, ve)
	}
	return errs
}

// Add adds a validation error to the collection.
func (e *ValidationErrors) Add(field, value, message string) {
	*e = append(*e, NewValidationError(field, value, message))
}

// AddCause adds a validation error caused by err.
func (e *ValidationErrors) AddCause(field, value, message string, err error) {
	ve := NewValidationError(field, value, message)
	ve.Err = err
	*e = append(*e, ve)
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Err returns the collection as an error, or nil when it is empty.
func (e ValidationErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Messages groups the messages by field, for form rendering.
func (e ValidationErrors) Messages() map[string][]string {
	m := make(map[string][]string, len(e))
	for _, ve := range e {
		m[ve.Field] = append(m[ve.Field], ve.Message)
	}
	return m
}
