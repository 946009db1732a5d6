package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAdmin rejects requests whose identity is not an administrator.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident := IdentityFromContext(c.Request().Context())
			if ident == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Message)
			}
			if !ident.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "Not enough permissions. Admin access required.")
			}
			return next(c)
		}
	}
}
