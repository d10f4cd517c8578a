package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "token"

// userIDKey is the echo context key holding the authenticated user id.
const userIDKey = "user_id"

type ctxKey struct{}

// SessionVerifier resolves a session token to a user id.
type SessionVerifier interface {
	Verify(raw string) (string, error)
}

// SessionGuard rejects requests without a valid session cookie. On success
// the user id is stored in the echo context under "user_id" and in the
// request context; the user record is not loaded.
func SessionGuard(v SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(SessionCookie)
			if err != nil || ck.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authenticated. Please log in."})
			}
			uid, err := v.Verify(ck.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid or expired token."})
			}

			c.Set(userIDKey, uid)
			req := c.Request()
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), ctxKey{}, uid)))
			return next(c)
		}
	}
}

// UserIDFromContext returns the id stored by SessionGuard.
func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(ctxKey{}).(string)
	return uid, ok && uid != ""
}
