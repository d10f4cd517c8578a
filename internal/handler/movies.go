package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinematch/internal/middleware"
	"github.com/iliyamo/cinematch/internal/model"
	"github.com/iliyamo/cinematch/internal/repository"
	"github.com/iliyamo/cinematch/internal/tmdb"
)

// MovieCatalog is the movie database behind /api/movies. *tmdb.Client
// implements it.
type MovieCatalog interface {
	Search(ctx context.Context, p tmdb.SearchParams) (tmdb.SearchResult, error)
	Movie(ctx context.Context, id int64) (tmdb.MovieDetails, error)
}

// ReviewStore is implemented by *repository.ReviewRepo.
type ReviewStore interface {
	ListByMovie(ctx context.Context, movieID int64) ([]model.Review, error)
	Create(ctx context.Context, rv *model.Review) error
	GetOwned(ctx context.Context, id string, movieID int64, userID string) (model.Review, error)
	Update(ctx context.Context, rv *model.Review) error
	DeleteOwned(ctx context.Context, id string, movieID int64, userID string) error
}

const (
	msgInvalidBody    = "Invalid request body."
	msgInvalidMovieID = "Invalid movie id."
	msgMovieNotFound  = "Movie not found."
	msgCatalogFailure = "Failed to fetch movies."
	msgRatingRequired = "Rating is required."
	msgRatingRange    = "Rating must be between 1 and 5."
	msgCommentTooLong = "Comment must be at most 1000 characters."
	msgReviewNotFound = "Review not found."
	msgReviewDeleted  = "Review deleted."
)

// MovieHandler proxies the movie catalog and manages reviews.
type MovieHandler struct {
	catalog MovieCatalog
	reviews ReviewStore
	logger  *slog.Logger
}

func NewMovieHandler(catalog MovieCatalog, reviews ReviewStore, logger *slog.Logger) *MovieHandler {
	return &MovieHandler{catalog: catalog, reviews: reviews, logger: logger}
}

type reviewReq struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Search: GET /api/movies/search?q=&genre=&year=&sort=&page=
func (h *MovieHandler) Search(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	res, err := h.catalog.Search(c.Request().Context(), tmdb.SearchParams{
		Query: c.QueryParam("q"),
		Genre: c.QueryParam("genre"),
		Year:  c.QueryParam("year"),
		Sort:  c.QueryParam("sort"),
		Page:  page,
	})
	if err != nil {
		return h.catalogError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Details: GET /api/movies/:id
func (h *MovieHandler) Details(c echo.Context) error {
	id, ok := movieID(c)
	if !ok {
		return message(c, http.StatusBadRequest, msgInvalidMovieID)
	}
	m, err := h.catalog.Movie(c.Request().Context(), id)
	if err != nil {
		return h.catalogError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// ListReviews: GET /api/movies/:id/reviews
func (h *MovieHandler) ListReviews(c echo.Context) error {
	id, ok := movieID(c)
	if !ok {
		return message(c, http.StatusBadRequest, msgInvalidMovieID)
	}
	list, err := h.reviews.ListByMovie(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, list)
}

// AddReview: POST /api/movies/:id/reviews
func (h *MovieHandler) AddReview(c echo.Context) error {
	id, ok := movieID(c)
	if !ok {
		return message(c, http.StatusBadRequest, msgInvalidMovieID)
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil || req.Rating == 0 {
		return message(c, http.StatusBadRequest, msgRatingRequired)
	}
	if msg := checkReview(req); msg != "" {
		return message(c, http.StatusBadRequest, msg)
	}

	rv := model.Review{
		ID:      uuid.NewString(),
		MovieID: id,
		Rating:  req.Rating,
		Comment: req.Comment,
		Author:  model.ReviewUser{ID: middleware.UserID(c)},
	}
	if err := h.reviews.Create(c.Request().Context(), &rv); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, rv)
}

// UpdateReview: PUT /api/movies/:id/reviews/:reviewId. Zero rating and
// empty comment leave the stored values untouched.
func (h *MovieHandler) UpdateReview(c echo.Context) error {
	id, ok := movieID(c)
	if !ok {
		return message(c, http.StatusBadRequest, msgInvalidMovieID)
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, msgInvalidBody)
	}
	if msg := checkReview(req); msg != "" {
		return message(c, http.StatusBadRequest, msg)
	}

	ctx := c.Request().Context()
	rv, err := h.reviews.GetOwned(ctx, c.Param("reviewId"), id, middleware.UserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		return message(c, http.StatusNotFound, msgReviewNotFound)
	}
	if err != nil {
		return writeError(c, h.logger, err)
	}
	if req.Rating != 0 {
		rv.Rating = req.Rating
	}
	if req.Comment != "" {
		rv.Comment = req.Comment
	}
	if err := h.reviews.Update(ctx, &rv); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return message(c, http.StatusNotFound, msgReviewNotFound)
		}
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, rv)
}

// DeleteReview: DELETE /api/movies/:id/reviews/:reviewId
func (h *MovieHandler) DeleteReview(c echo.Context) error {
	id, ok := movieID(c)
	if !ok {
		return message(c, http.StatusBadRequest, msgInvalidMovieID)
	}
	err := h.reviews.DeleteOwned(c.Request().Context(), c.Param("reviewId"), id, middleware.UserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		return message(c, http.StatusNotFound, msgReviewNotFound)
	}
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return message(c, http.StatusOK, msgReviewDeleted)
}

func (h *MovieHandler) catalogError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, tmdb.ErrNotFound):
		return message(c, http.StatusNotFound, msgMovieNotFound)
	default:
		h.logger.Warn("movie catalog request failed", "route", c.Path(), "error", err)
		return message(c, http.StatusBadGateway, msgCatalogFailure)
	}
}

func movieID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// checkReview validates the fields that are present.
func checkReview(req reviewReq) string {
	if req.Rating != 0 && (req.Rating < model.MinRating || req.Rating > model.MaxRating) {
		return msgRatingRange
	}
	if utf8.RuneCountInString(req.Comment) > model.MaxCommentLength {
		return msgCommentTooLong
	}
	return ""
}
