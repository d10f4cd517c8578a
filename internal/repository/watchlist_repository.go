package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/cinematch/internal/model"
)

// WatchlistRepo persists watchlists in their own table rather than on the
// user row, so list edits never overwrite credential columns.
type WatchlistRepo struct {
	db *sql.DB
}

func NewWatchlistRepo(db *sql.DB) *WatchlistRepo { return &WatchlistRepo{db: db} }

// ListByUser returns all watchlists of userID.
func (r *WatchlistRepo) ListByUser(ctx context.Context, userID string) ([]model.Watchlist, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, COALESCE(description,''), movie_ids FROM watchlists WHERE user_id = ? ORDER BY created_at", userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlists: %w", err)
	}
	defer rows.Close()

	out := []model.Watchlist{}
	for rows.Next() {
		w, err := scanWatchlist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetOwned returns watchlist id when it belongs to userID.
func (r *WatchlistRepo) GetOwned(ctx context.Context, id, userID string) (model.Watchlist, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, COALESCE(description,''), movie_ids FROM watchlists WHERE id = ? AND user_id = ?", id, userID)
	w, err := scanWatchlist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Watchlist{}, ErrNotFound
	}
	return w, err
}

// Create inserts a new watchlist.
func (r *WatchlistRepo) Create(ctx context.Context, w *model.Watchlist) error {
	ids, err := encodeMovieIDs(w.MovieIDs)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO watchlists (id, user_id, name, description, movie_ids, created_at) VALUES (?, ?, ?, ?, ?, UTC_TIMESTAMP(3))",
		w.ID, w.UserID, w.Name, w.Description, ids)
	if err != nil {
		return fmt.Errorf("insert watchlist: %w", err)
	}
	return nil
}

// Update overwrites name, description and movie ids of an owned watchlist.
func (r *WatchlistRepo) Update(ctx context.Context, w *model.Watchlist) error {
	ids, err := encodeMovieIDs(w.MovieIDs)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE watchlists SET name = ?, description = ?, movie_ids = ? WHERE id = ? AND user_id = ?",
		w.Name, w.Description, ids, w.ID, w.UserID)
	if err != nil {
		return fmt.Errorf("update watchlist: %w", err)
	}
	return requireRow(res)
}

// DeleteOwned removes an owned watchlist.
func (r *WatchlistRepo) DeleteOwned(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM watchlists WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete watchlist: %w", err)
	}
	return requireRow(res)
}

func scanWatchlist(s rowScanner) (model.Watchlist, error) {
	var (
		w   model.Watchlist
		raw []byte
	)
	if err := s.Scan(&w.ID, &w.UserID, &w.Name, &w.Description, &raw); err != nil {
		return model.Watchlist{}, err
	}
	w.MovieIDs = []int64{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &w.MovieIDs); err != nil {
			return model.Watchlist{}, fmt.Errorf("decode movie_ids: %w", err)
		}
	}
	return w, nil
}

func encodeMovieIDs(ids []int64) ([]byte, error) {
	if ids == nil {
		ids = []int64{}
	}
	return json.Marshal(ids)
}
