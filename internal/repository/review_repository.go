package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/cinematch/internal/model"
)

// ReviewRepo encapsulates queries on the `reviews` table. Update and
// delete are scoped to the author: a review owned by someone else is
// reported as ErrNotFound.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewSelect = `SELECT r.id, r.movie_id, r.rating, COALESCE(r.comment,''), r.user_id, u.username, r.created_at, r.updated_at
FROM reviews r JOIN users u ON u.id = r.user_id`

// ListByMovie returns all reviews of a movie, newest first.
func (r *ReviewRepo) ListByMovie(ctx context.Context, movieID int64) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx, reviewSelect+" WHERE r.movie_id = ? ORDER BY r.created_at DESC", movieID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// Create inserts a review and returns it with the author's username.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	now := time.Now().UTC()
	rv.CreatedAt, rv.UpdatedAt = now, now
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (id, user_id, movie_id, rating, comment, created_at, updated_at) VALUES (?,?,?,?,?,?,?)",
		rv.ID, rv.Author.ID, rv.MovieID, rv.Rating, rv.Comment, now, now)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return r.db.QueryRowContext(ctx, "SELECT username FROM users WHERE id = ?", rv.Author.ID).Scan(&rv.Author.Username)
}

// GetOwned fetches a review of movieID written by userID.
func (r *ReviewRepo) GetOwned(ctx context.Context, id string, movieID int64, userID string) (model.Review, error) {
	row := r.db.QueryRowContext(ctx, reviewSelect+" WHERE r.id = ? AND r.movie_id = ? AND r.user_id = ?", id, movieID, userID)
	rv, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Review{}, ErrNotFound
	}
	return rv, err
}

// Update writes rating and comment of a review owned by its author.
func (r *ReviewRepo) Update(ctx context.Context, rv *model.Review) error {
	rv.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"UPDATE reviews SET rating = ?, comment = ?, updated_at = ? WHERE id = ? AND movie_id = ? AND user_id = ?",
		rv.Rating, rv.Comment, rv.UpdatedAt, rv.ID, rv.MovieID, rv.Author.ID)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return requireRow(res)
}

// DeleteOwned removes a review if it belongs to userID.
func (r *ReviewRepo) DeleteOwned(ctx context.Context, id string, movieID int64, userID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = ? AND movie_id = ? AND user_id = ?", id, movieID, userID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(s rowScanner) (model.Review, error) {
	var rv model.Review
	err := s.Scan(&rv.ID, &rv.MovieID, &rv.Rating, &rv.Comment, &rv.Author.ID, &rv.Author.Username, &rv.CreatedAt, &rv.UpdatedAt)
	return rv, err
}
