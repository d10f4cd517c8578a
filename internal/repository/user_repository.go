package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinematch/internal/model"
)

// UserRepo is the credential store. Every method is a single statement, so
// each call is atomic at row granularity.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,password_hash,reset_token_hash,reset_token_expiry,created_at"

// InsertUser stores a new user. Unique violations map to ErrDuplicateKey.
func (r *UserRepo) InsertUser(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id,username,email,password_hash,created_at) VALUES (?,?,?,?,?)",
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindUserByEmail fetches a user by normalized email.
func (r *UserRepo) FindUserByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// FindUserByUsername fetches a user by exact username.
func (r *UserRepo) FindUserByUsername(ctx context.Context, username string) (model.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username)
}

// FindUserByID fetches a user by id.
func (r *UserRepo) FindUserByID(ctx context.Context, id string) (model.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// UpdateProfile changes username and email of one user. Empty values keep
// the current column value.
func (r *UserRepo) UpdateProfile(ctx context.Context, id, username, email string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username=COALESCE(NULLIF(?,''),username), email=COALESCE(NULLIF(?,''),email) WHERE id=?",
		username, email, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("update profile: %w", err)
	}
	return requireRow(res)
}

func (r *UserRepo) findOne(ctx context.Context, query string, args ...any) (model.User, error) {
	var (
		u         model.User
		tokenHash sql.NullString
		expiry    sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &tokenHash, &expiry, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("query user: %w", err)
	}
	if tokenHash.Valid && expiry.Valid {
		u.ResetTokenHash = tokenHash.String
		t := expiry.Time.UTC()
		u.ResetTokenExpiry = &t
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// requireRow maps "zero rows affected" to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
