package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/cinematch/internal/model"
)

// Reset tokens live on the users row (reset_token_hash, reset_token_expiry).
// Only the SHA-256 of the token is stored; callers pass the digest.

// SetResetToken stores a new token digest and expiry for userID, replacing
// whatever token was pending before.
func (r *UserRepo) SetResetToken(ctx context.Context, userID, tokenHash string, exp time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token_hash=?, reset_token_expiry=? WHERE id=?",
		tokenHash, exp.UTC(), userID)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	return requireRow(res)
}

// FindUserByResetToken returns the user whose pending token matches
// tokenHash and whose expiry is strictly after now.
func (r *UserRepo) FindUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (model.User, error) {
	return r.findOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE reset_token_hash=? AND reset_token_expiry > ? LIMIT 1",
		tokenHash, now.UTC())
}

// ResetPassword stores newHash and clears both reset fields in one
// statement, but only while tokenHash is still the pending token. A token
// consumed or replaced in the meantime yields ErrNotFound.
func (r *UserRepo) ResetPassword(ctx context.Context, userID, tokenHash, newHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, reset_token_hash=NULL, reset_token_expiry=NULL WHERE id=? AND reset_token_hash=?",
		newHash, userID, tokenHash)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return requireRow(res)
}
