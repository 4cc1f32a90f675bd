package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

type HTTPObserver interface {
	ObserveHTTP(method, path string, status int, d time.Duration)
}

// Metrics records one observation per request, labelled by route template
// so path parameters do not explode label cardinality.
func Metrics(obs HTTPObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			obs.ObserveHTTP(c.Request().Method, path, c.Response().Status, time.Since(start))
			return nil
		}
	}
}
