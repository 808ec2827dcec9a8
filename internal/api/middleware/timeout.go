package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// TimeoutConfig bounds handler time. Batches run in the background, so no
// control panel request needs long.
func TimeoutConfig(timeout time.Duration) echo.MiddlewareFunc {
	return middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout:      timeout,
		ErrorMessage: `{"error":"timeout","message":"request timed out"}`,
		OnTimeoutRouteErrorHandler: func(err error, c echo.Context) {
			c.Logger().Warn(http.StatusText(http.StatusServiceUnavailable), err)
		},
	})
}
