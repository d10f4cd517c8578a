package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinematch/internal/utils"
)

func guarded(t *testing.T, codec *utils.SessionCodec, cookie *http.Cookie) (*httptest.ResponseRecorder, string, string) {
	t.Helper()
	e := echo.New()
	var fromEcho, fromCtx string
	e.GET("/me", func(c echo.Context) error {
		fromEcho = UserID(c)
		fromCtx, _ = UserIDFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}, SessionGuard(codec))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, fromEcho, fromCtx
}

func TestSessionGuard(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	codec := utils.NewSessionCodec("secret", 0).WithClock(func() time.Time { return now })
	tok, err := codec.Issue("user-1")
	require.NoError(t, err)

	t.Run("valid cookie", func(t *testing.T) {
		rec, echoID, ctxID := guarded(t, codec, &http.Cookie{Name: SessionCookie, Value: tok.Token})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", echoID)
		assert.Equal(t, "user-1", ctxID)
	})

	t.Run("missing cookie", func(t *testing.T) {
		rec, _, _ := guarded(t, codec, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Not authenticated. Please log in."}`, rec.Body.String())
	})

	t.Run("tampered cookie", func(t *testing.T) {
		rec, _, _ := guarded(t, codec, &http.Cookie{Name: SessionCookie, Value: tok.Token + "x"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Invalid or expired token."}`, rec.Body.String())
	})

	t.Run("expired cookie", func(t *testing.T) {
		later := codec.WithClock(func() time.Time { return now.Add(utils.DefaultSessionTTL) })
		rec, _, _ := guarded(t, later, &http.Cookie{Name: SessionCookie, Value: tok.Token})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Invalid or expired token."}`, rec.Body.String())
	})
}

func TestUserID_OutsideGuard(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Empty(t, UserID(c))
	assert.Equal(t, "anon", identity(c))
}
