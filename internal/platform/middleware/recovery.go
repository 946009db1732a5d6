package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/frontdesk/internal/platform/apperr"
	"github.com/clinicdesk/frontdesk/internal/platform/auth"
)

// Recovery turns a handler panic into the same opaque 500 that unexpected
// domain errors produce. The panic value travels as the internal cause so
// the request logger records it too.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				req := c.Request()
				rid, _ := c.Get("request_id").(string)
				cause := fmt.Errorf("panic: %v", r)

				logger.Error().
					Err(cause).
					Str("request_id", rid).
					Int64("user_id", auth.UserIDFromContext(req.Context())).
					Str("resource", extractResource(req.URL.Path)).
					Str("route", c.Path()).
					Str("method", req.Method).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")

				err = apperr.ToHTTP(apperr.Unexpected(cause, "%s %s", req.Method, c.Path()))
			}()
			return next(c)
		}
	}
}
