package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinematch/internal/middleware"
	"github.com/iliyamo/cinematch/internal/model"
	"github.com/iliyamo/cinematch/internal/repository"
	"github.com/iliyamo/cinematch/internal/service"
)

// ProfileStore is the subset of *repository.UserRepo the profile routes use.
type ProfileStore interface {
	FindUserByID(ctx context.Context, id string) (model.User, error)
	UpdateProfile(ctx context.Context, id, username, email string) error
}

// FavoriteStore is implemented by *repository.FavoriteRepo.
type FavoriteStore interface {
	List(ctx context.Context, userID string) ([]int64, error)
	Add(ctx context.Context, userID string, movieID int64) error
	Remove(ctx context.Context, userID string, movieID int64) error
}

// WatchlistStore is implemented by *repository.WatchlistRepo.
type WatchlistStore interface {
	ListByUser(ctx context.Context, userID string) ([]model.Watchlist, error)
	GetOwned(ctx context.Context, id, userID string) (model.Watchlist, error)
	Create(ctx context.Context, w *model.Watchlist) error
	Update(ctx context.Context, w *model.Watchlist) error
	DeleteOwned(ctx context.Context, id, userID string) error
}

const (
	msgUserNotFound      = "User not found."
	msgMovieIDRequired   = "movieId is required."
	msgFavoriteAdded     = "Added to favorites."
	msgFavoriteRemoved   = "Removed from favorites."
	msgNameRequired      = "Name is required."
	msgWatchlistNotFound = "Watchlist not found."
	msgWatchlistDeleted  = "Watchlist deleted."
)

// UserHandler serves /api/users. Every route runs behind the session guard.
type UserHandler struct {
	users      ProfileStore
	favorites  FavoriteStore
	watchlists WatchlistStore
	logger     *slog.Logger
}

func NewUserHandler(users ProfileStore, favorites FavoriteStore, watchlists WatchlistStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, favorites: favorites, watchlists: watchlists, logger: logger}
}

type profileReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type favoriteReq struct {
	MovieID int64 `json:"movieId"`
}

type watchlistReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	MovieIDs    *[]int64 `json:"movieIds"`
}

// Profile: GET /api/users/profile
func (h *UserHandler) Profile(c echo.Context) error {
	u, err := h.users.FindUserByID(c.Request().Context(), middleware.UserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		return message(c, http.StatusNotFound, msgUserNotFound)
	}
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, u.Public())
}

// UpdateProfile: PUT /api/users/profile. Empty fields keep their value;
// present fields go through the same rules as registration.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, msgInvalidBody)
	}
	ctx := c.Request().Context()
	uid := middleware.UserID(c)

	u, err := h.users.FindUserByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return message(c, http.StatusNotFound, msgUserNotFound)
	}
	if err != nil {
		return writeError(c, h.logger, err)
	}

	if name := strings.TrimSpace(req.Username); name != "" {
		if !service.ValidUsername(name) {
			return message(c, http.StatusBadRequest, service.MsgInvalidUsername)
		}
		u.Username = name
	}
	if email := service.NormalizeEmail(req.Email); email != "" {
		if !service.ValidEmail(email) {
			return message(c, http.StatusBadRequest, service.MsgInvalidEmail)
		}
		u.Email = email
	}

	switch err := h.users.UpdateProfile(ctx, uid, u.Username, u.Email); {
	case errors.Is(err, repository.ErrDuplicateKey):
		return message(c, http.StatusConflict, service.MsgConflict)
	case errors.Is(err, repository.ErrNotFound):
		return message(c, http.StatusNotFound, msgUserNotFound)
	case err != nil:
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, u.Public())
}

// Favorites: GET /api/users/favorites
func (h *UserHandler) Favorites(c echo.Context) error {
	ids, err := h.favorites.List(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, ids)
}

// AddFavorite: POST /api/users/favorites
func (h *UserHandler) AddFavorite(c echo.Context) error {
	var req favoriteReq
	if err := c.Bind(&req); err != nil || req.MovieID <= 0 {
		return message(c, http.StatusBadRequest, msgMovieIDRequired)
	}
	if err := h.favorites.Add(c.Request().Context(), middleware.UserID(c), req.MovieID); err != nil {
		return writeError(c, h.logger, err)
	}
	return message(c, http.StatusOK, msgFavoriteAdded)
}

// RemoveFavorite: DELETE /api/users/favorites/:id
func (h *UserHandler) RemoveFavorite(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return message(c, http.StatusBadRequest, msgInvalidMovieID)
	}
	err = h.favorites.Remove(c.Request().Context(), middleware.UserID(c), id)
	if errors.Is(err, repository.ErrNotFound) {
		return message(c, http.StatusNotFound, msgMovieNotFound)
	}
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return message(c, http.StatusOK, msgFavoriteRemoved)
}

// Watchlists: GET /api/users/watchlists
func (h *UserHandler) Watchlists(c echo.Context) error {
	list, err := h.watchlists.ListByUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, list)
}

// CreateWatchlist: POST /api/users/watchlists
func (h *UserHandler) CreateWatchlist(c echo.Context) error {
	var req watchlistReq
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, msgInvalidBody)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return message(c, http.StatusBadRequest, msgNameRequired)
	}
	w := model.Watchlist{
		ID:          uuid.NewString(),
		UserID:      middleware.UserID(c),
		Name:        name,
		Description: req.Description,
		MovieIDs:    []int64{},
	}
	if req.MovieIDs != nil {
		w.MovieIDs = *req.MovieIDs
	}
	if err := h.watchlists.Create(c.Request().Context(), &w); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, w)
}

// UpdateWatchlist: PUT /api/users/watchlists/:id. A present movieIds array
// replaces the stored one, including with an empty list.
func (h *UserHandler) UpdateWatchlist(c echo.Context) error {
	var req watchlistReq
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, msgInvalidBody)
	}
	ctx := c.Request().Context()
	w, err := h.watchlists.GetOwned(ctx, c.Param("id"), middleware.UserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		return message(c, http.StatusNotFound, msgWatchlistNotFound)
	}
	if err != nil {
		return writeError(c, h.logger, err)
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		w.Name = name
	}
	if req.Description != "" {
		w.Description = req.Description
	}
	if req.MovieIDs != nil {
		w.MovieIDs = *req.MovieIDs
	}
	if w.MovieIDs == nil {
		w.MovieIDs = []int64{}
	}

	switch err := h.watchlists.Update(ctx, &w); {
	case errors.Is(err, repository.ErrNotFound):
		return message(c, http.StatusNotFound, msgWatchlistNotFound)
	case err != nil:
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, w)
}

// DeleteWatchlist: DELETE /api/users/watchlists/:id
func (h *UserHandler) DeleteWatchlist(c echo.Context) error {
	err := h.watchlists.DeleteOwned(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		return message(c, http.StatusNotFound, msgWatchlistNotFound)
	}
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return message(c, http.StatusOK, msgWatchlistDeleted)
}
