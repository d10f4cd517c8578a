package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinematch/internal/middleware"
	"github.com/iliyamo/cinematch/internal/model"
	"github.com/iliyamo/cinematch/internal/service"
)

// Authenticator is implemented by service.AuthService.
type Authenticator interface {
	Register(ctx context.Context, username, email, password string) (model.PublicUser, error)
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
	Logout(ctx context.Context)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	auth       Authenticator
	logger     *slog.Logger
	secure     bool
	sessionTTL time.Duration
}

// NewAuthHandler builds the handler. secure marks the session cookie
// Secure, which should be true in production only.
func NewAuthHandler(auth Authenticator, logger *slog.Logger, secure bool, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger, secure: secure, sessionTTL: sessionTTL}
}

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotReq struct {
	Email string `json:"email"`
}

type resetReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type loginResp struct {
	User    model.PublicUser `json:"user"`
	Message string           `json:"message"`
}

// authTimeout bounds the store work of one auth request. The reset email
// has its own bound inside the service.
const authTimeout = 15 * time.Second

// Register: POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, service.MsgAllFieldsRequired)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
	defer cancel()

	if _, err := h.auth.Register(ctx, req.Username, req.Email, req.Password); err != nil {
		return writeError(c, h.logger, err)
	}
	return message(c, http.StatusCreated, service.MsgRegistered)
}

// Login: POST /api/auth/login. Sets the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, service.MsgLoginFieldsRequired)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
	defer cancel()

	res, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	c.SetCookie(h.sessionCookie(res.Token, res.ExpiresAt, int(h.sessionTTL/time.Second)))
	return c.JSON(http.StatusOK, loginResp{User: res.User, Message: service.MsgLoggedIn})
}

// Logout: POST /api/auth/logout. Always succeeds and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.auth.Logout(c.Request().Context())
	c.SetCookie(h.sessionCookie("", time.Unix(0, 0), -1))
	return message(c, http.StatusOK, service.MsgLoggedOut)
}

// ForgotPassword: POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, service.MsgEmailRequired)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
	defer cancel()

	if err := h.auth.ForgotPassword(ctx, req.Email); err != nil {
		return writeError(c, h.logger, err)
	}
	return message(c, http.StatusOK, service.MsgResetLinkSent)
}

// ResetPassword: POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, service.MsgResetFieldsRequired)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
	defer cancel()

	if err := h.auth.ResetPassword(ctx, req.Token, req.Password); err != nil {
		return writeError(c, h.logger, err)
	}
	return message(c, http.StatusOK, service.MsgPasswordReset)
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
