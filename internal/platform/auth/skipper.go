package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths are route patterns reachable without a bearer token: health
// checks, the login and registration endpoints and the shift endpoints.
var publicPaths = map[string]bool{
	"/":                true,
	"/health":          true,
	"/health/db":       true,
	"/token":           true,
	"/api/login":       true,
	"/api/register":    true,
	"/api/shifts":      true,
	"/api/shifts/bulk": true,
	"/api/shifts/:id":  true,
}

// AuthSkipper matches on the registered route pattern, so it must run after
// routing (e.Use, not e.Pre). Trailing slashes are stripped before routing.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

func IsPublicPath(path string) bool {
	return publicPaths[path]
}
