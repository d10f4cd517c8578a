package middleware

// identity.go holds helpers that read the caller identity placed in the
// echo context by SessionGuard.

import (
	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated user id, or "" outside SessionGuard.
func UserID(c echo.Context) string {
	if s, ok := c.Get(userIDKey).(string); ok {
		return s
	}
	return ""
}

// identity returns the user id for keying rate limits, "anon" when the
// request is not authenticated.
func identity(c echo.Context) string {
	if s := UserID(c); s != "" {
		return s
	}
	return "anon"
}
