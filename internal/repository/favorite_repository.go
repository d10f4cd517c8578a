package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// FavoriteRepo stores (user, movie) favorite pairs in `favorites`.
type FavoriteRepo struct {
	db *sql.DB
}

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

// List returns the TMDB ids favorited by userID in insertion order.
func (r *FavoriteRepo) List(ctx context.Context, userID string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT movie_id FROM favorites WHERE user_id = ? ORDER BY created_at", userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Add marks movieID as a favorite. Adding twice is a no-op.
func (r *FavoriteRepo) Add(ctx context.Context, userID string, movieID int64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO favorites (user_id, movie_id, created_at) VALUES (?, ?, UTC_TIMESTAMP(3))",
		userID, movieID)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// Remove deletes a favorite; ErrNotFound when it was not present.
func (r *FavoriteRepo) Remove(ctx context.Context, userID string, movieID int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM favorites WHERE user_id = ? AND movie_id = ?", userID, movieID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return requireRow(res)
}
