package middleware

import (
	"github.com/labstack/echo/v4"

	"winsbygroup.com/tracker/internal/version"
)

// VersionHeader carries the server version on every response.
const VersionHeader = "X-Tracker-Version"

// Version adds the app version to the response headers.
func Version() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(VersionHeader, version.Version)
			return next(c)
		}
	}
}
