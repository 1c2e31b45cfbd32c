package ledger

import (
	"errors"
	"fmt"
)

// Set of error variables for the ledger operations.
var (
	ErrNoPendingWork   = errors.New("no pending transactions")
	ErrNotFound        = errors.New("block not found")
	ErrMiningExhausted = errors.New("mining exhausted the allowed attempts")
)

// ValidationError is returned when a transaction or block is constructed
// with malformed fields.
type ValidationError struct {
	Field string
	Err   error
}

// NewValidationError constructs a validation error for the named field.
func NewValidationError(field string, format string, args ...any) error {
	return &ValidationError{
		Field: field,
		Err:   fmt.Errorf(format, args...),
	}
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Err.Error()
	}
	return fmt.Sprintf("%s: %s", ve.Field, ve.Err)
}

// Unwrap provides support for errors.Is and errors.As.
func (ve *ValidationError) Unwrap() error {
	return ve.Err
}

// IsValidationError checks if an error of type ValidationError exists.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetValidationError returns a copy of the ValidationError pointer.
func GetValidationError(err error) *ValidationError {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	return ve
}
