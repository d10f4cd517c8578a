package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinematch/internal/model"
)

var reviewCols = []string{"id", "movie_id", "rating", "comment", "user_id", "username", "created_at", "updated_at"}

func TestReviewRepo_ListByMovie(t *testing.T) {
	db, mock := newMockDB(t)
	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(reviewSelect + " WHERE r.movie_id = ? ORDER BY r.created_at DESC")).
		WithArgs(int64(550)).
		WillReturnRows(sqlmock.NewRows(reviewCols).
			AddRow("r2", 550, 4, "good", "u2", "bob", ts, ts).
			AddRow("r1", 550, 5, "", "u1", "ana", ts, ts))

	got, err := NewReviewRepo(db).ListByMovie(context.Background(), 550)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[0].Author.Username)
	assert.Equal(t, 5, got[1].Rating)
}

func TestReviewRepo_ListByMovie_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(reviewSelect)).WillReturnRows(sqlmock.NewRows(reviewCols))

	got, err := NewReviewRepo(db).ListByMovie(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReviewRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reviews (id, user_id, movie_id, rating, comment, created_at, updated_at) VALUES (?,?,?,?,?,?,?)")).
		WithArgs("r1", "u1", int64(550), 4, "nice", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT username FROM users WHERE id = ?")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("ana"))

	rv := &model.Review{ID: "r1", MovieID: 550, Rating: 4, Comment: "nice", Author: model.ReviewUser{ID: "u1"}}
	require.NoError(t, NewReviewRepo(db).Create(context.Background(), rv))
	assert.Equal(t, "ana", rv.Author.Username)
	assert.False(t, rv.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepo_OwnerScopedWrites(t *testing.T) {
	ctx := context.Background()

	t.Run("update by non-owner is not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE reviews SET rating = ?, comment = ?, updated_at = ? WHERE id = ? AND movie_id = ? AND user_id = ?")).
			WithArgs(3, "meh", sqlmock.AnyArg(), "r1", int64(550), "intruder").
			WillReturnResult(sqlmock.NewResult(0, 0))

		rv := &model.Review{ID: "r1", MovieID: 550, Rating: 3, Comment: "meh", Author: model.ReviewUser{ID: "intruder"}}
		assert.ErrorIs(t, NewReviewRepo(db).Update(ctx, rv), ErrNotFound)
	})

	t.Run("delete by owner", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reviews WHERE id = ? AND movie_id = ? AND user_id = ?")).
			WithArgs("r1", int64(550), "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewReviewRepo(db).DeleteOwned(ctx, "r1", 550, "u1"))
	})

	t.Run("get owned missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta(reviewSelect)).WillReturnRows(sqlmock.NewRows(reviewCols))

		_, err := NewReviewRepo(db).GetOwned(ctx, "r1", 550, "u1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
