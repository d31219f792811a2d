package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that bypass authentication: infrastructure
// endpoints and the token endpoints themselves.
var publicPaths = map[string]bool{
	"/health":              true,
	"/health/db":           true,
	"/api/v1/auth/token":   true,
	"/api/v1/auth/refresh": true,
}

// Skipper returns true for requests whose path should skip authentication.
func Skipper(c echo.Context) bool {
	return publicPaths[c.Request().URL.Path]
}

// IsPublicPath reports whether the given path bypasses authentication.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
