package middleware

import (
	"strconv"
	"swiftcart/pkg/metrics"
	"time"

	"github.com/labstack/echo/v4"
)

// Metrics records request counts and latency per route.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			method := c.Request().Method
			path := c.Path()

			metrics.HTTPRequestLatency.WithLabelValues(method, path).
				Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(method, path,
				strconv.Itoa(c.Response().Status)).Inc()

			return err
		}
	}
}
