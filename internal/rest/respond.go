package rest

import (
	"errors"
	"net/http"
	"swiftcart/domain"

	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// respondError maps the domain error taxonomy onto HTTP status codes in one
// place, so handlers never string-match error messages.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError

	switch {
	case domain.IsValidationError(err),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrDuplicateUsername):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrPaymentVerification):
		status = http.StatusUnprocessableEntity
	}

	return c.JSON(status, ResponseError{Message: err.Error()})
}
