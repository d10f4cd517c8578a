package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/oops"

	"github.com/iliyamo/cinematch/internal/logging"
	"github.com/iliyamo/cinematch/internal/service"
)

// statusFor maps a service error to an HTTP status and a client message.
// Errors without a known code become a generic 500.
func statusFor(err error) (int, string) {
	oe, ok := oops.AsOops(err)
	if !ok {
		return http.StatusInternalServerError, service.MsgInternalServerError
	}
	switch oe.Code() {
	case service.CodeValidation:
		return http.StatusBadRequest, oe.Error()
	case service.CodeConflict:
		return http.StatusConflict, service.MsgConflict
	case service.CodeInvalidCredentials:
		return http.StatusUnauthorized, service.MsgInvalidCredentials
	case service.CodeNotFound:
		return http.StatusNotFound, oe.Error()
	case service.CodeInvalidToken:
		return http.StatusBadRequest, service.MsgInvalidToken
	case service.CodeUnauthenticated:
		return http.StatusUnauthorized, service.MsgNotAuthenticated
	case service.CodeDeliveryFailure:
		return http.StatusBadGateway, service.MsgDeliveryFailure
	default:
		return http.StatusInternalServerError, service.MsgInternalServerError
	}
}

// writeError renders err as {"message": ...}. Server-side failures are
// logged with their full context; the client only sees the generic text.
func writeError(c echo.Context, logger *slog.Logger, err error) error {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.LogError(logger, "request failed", oops.
			With("method", c.Request().Method).
			With("route", c.Path()).
			Wrap(err))
	}
	return c.JSON(status, echo.Map{"message": msg})
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}

// HTTPErrorHandler replaces echo's default so framework errors (unknown
// route, bad method, panics recovered upstream) share the {message} body.
func HTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok && s != "" {
				msg = s
			} else if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
			if he.Code >= http.StatusInternalServerError {
				logging.LogError(logger, "request failed", err)
				msg = service.MsgInternalServerError
			}
			if c.Request().Method == http.MethodHead {
				_ = c.NoContent(he.Code)
				return
			}
			_ = message(c, he.Code, msg)
			return
		}
		_ = writeError(c, logger, err)
	}
}
