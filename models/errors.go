package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is the root of every "entity does not exist" error.
var ErrNotFound = errors.New("not found")

// ErrValidation is the root of every malformed or missing input error.
var ErrValidation = errors.New("validation failed")

var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound               = fmt.Errorf("product %w", ErrNotFound)
	ErrCategoryNotFound              = fmt.Errorf("category %w", ErrNotFound)
	ErrProductColorNotFound          = fmt.Errorf("product color %w", ErrNotFound)
	ErrLetteringItemCategoryNotFound = fmt.Errorf("lettering item category %w", ErrNotFound)
	ErrProductVariationNotFound      = fmt.Errorf("product variation %w", ErrNotFound)
	ErrOrderNotFound                 = fmt.Errorf("order %w", ErrNotFound)
	ErrBlobNotFound                  = fmt.Errorf("image %w", ErrNotFound)
)

var (
	// ErrOrderAlreadyPaid is returned for any mutation of an order that has been charged.
	ErrOrderAlreadyPaid = errors.New("order already paid")
	// ErrPaymentInProgress is returned when another request holds the charge claim.
	ErrPaymentInProgress = errors.New("payment already in progress for this order")
)

// ValidationError carries a human readable reason and unwraps to ErrValidation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid builds a ValidationError from a format string.
func Invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
