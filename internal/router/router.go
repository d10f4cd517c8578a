// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/cinematch/internal/handler"
	"github.com/iliyamo/cinematch/internal/metrics"
	"github.com/iliyamo/cinematch/internal/middleware"
)

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, m *metrics.Metrics) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
}

// RegisterAuth mounts /api/auth. limiter guards every auth endpoint,
// logout included.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)
}

// RegisterMovies mounts /api/movies. Catalog lookups are public and cached;
// review reads are public while review writes need a session.
func RegisterMovies(e *echo.Echo, h *handler.MovieHandler, cache echo.MiddlewareFunc, guard echo.MiddlewareFunc) {
	g := e.Group("/api/movies")
	g.GET("/search", h.Search, cache)
	g.GET("/:id", h.Details, cache)
	g.GET("/:id/reviews", h.ListReviews)
	g.POST("/:id/reviews", h.AddReview, guard)
	g.PUT("/:id/reviews/:reviewId", h.UpdateReview, guard)
	g.DELETE("/:id/reviews/:reviewId", h.DeleteReview, guard)
}

// RegisterUsers mounts /api/users; every route requires a session.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, guard echo.MiddlewareFunc) {
	g := e.Group("/api/users", guard)
	g.GET("/profile", h.Profile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/favorites", h.Favorites)
	g.POST("/favorites", h.AddFavorite)
	g.DELETE("/favorites/:id", h.RemoveFavorite)
	g.GET("/watchlists", h.Watchlists)
	g.POST("/watchlists", h.CreateWatchlist)
	g.PUT("/watchlists/:id", h.UpdateWatchlist)
	g.DELETE("/watchlists/:id", h.DeleteWatchlist)
}

// Global installs the middleware every request passes through: panic
// recovery, slog request logging, CORS for the web client and request
// metrics.
func Global(e *echo.Echo, logger *slog.Logger, clientURL string, m *metrics.Metrics) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("path", v.URIPath),
				slog.String("route", v.RoutePath),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			if v.Status >= 500 {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "http request", attrs...)
			return nil
		},
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{clientURL},
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(middleware.RequestMetrics(m))
}
