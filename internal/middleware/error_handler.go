package middleware

import (
	"net/http"
	"swiftcart/pkg/logger"

	jsonres "swiftcart/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler is the last-resort echo error handler for errors that escaped
// the handlers (bad routes, panics surfaced by Recover, internal echo errors).
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	if httpErr, ok := err.(*echo.HTTPError); ok {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("Unhandled request error", err)
	}

	if writeErr := c.JSON(code, jsonres.Error(http.StatusText(code), message, nil)); writeErr != nil {
		logger.Error("Failed to write error response", writeErr)
	}
}
