package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kyberos/mission-control/pkg/metrics"
)

// Metrics records request counts and latency per route. The route pattern is
// used as the path label, not the raw URL, to keep cardinality bounded.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			metrics.RecordHTTPRequest(
				c.Request().Method,
				c.Path(),
				strconv.Itoa(status),
				time.Since(start).Seconds(),
			)
			return err
		}
	}
}
