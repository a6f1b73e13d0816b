package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failure")
	ErrPersistenceParse  = errors.New("persisted state is corrupted")
	ErrLookup            = errors.New("product lookup failure")
	ErrProcessing        = errors.New("payment processing failure")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid checkout transition")
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrOrderInProgress   = errors.New("order is already being placed")
	ErrInvalidProduct    = errors.New("invalid product")
)

// A ValidationError reports the offending field of a user input.
//
// It matches [ErrValidation] with [errors.Is].
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
