package domain

import "errors"

// Sentinel errors shared across the business services. Repositories wrap
// these with context; handlers match with errors.Is to pick a status code.
var (
	ErrNotFound            = errors.New("requested item is not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrOutOfStock          = errors.New("insufficient stock")
	ErrPaymentVerification = errors.New("payment verification failed")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrDuplicateUsername   = errors.New("username already taken")
)

// ValidationError wraps input validation failures so they map to 400 without
// the handlers inspecting validator internals.
type ValidationError struct {
	Err error
}

func (e ValidationError) Error() string {
	return e.Err.Error()
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

func NewValidationError(err error) error {
	return ValidationError{Err: err}
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
