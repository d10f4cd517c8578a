package model

import "time"

// User represents an account as stored in the `users` table. Each field
// corresponds to a column. The struct carries credential material and must
// never be serialized directly; handlers respond with PublicUser instead.
//
// Fields:
//
//	ID               – UUID primary key, generated by the server.
//	Username         – unique, case-sensitive display name.
//	Email            – unique, lowercased address used to log in.
//	PasswordHash     – bcrypt hash of the password.
//	ResetTokenHash   – SHA-256 of the pending reset token (empty when none).
//	ResetTokenExpiry – expiry of the pending reset token (nil when none).
//	CreatedAt        – set once on insert.
type User struct {
	ID               string     // users.id
	Username         string     // users.username
	Email            string     // users.email
	PasswordHash     string     // users.password_hash
	ResetTokenHash   string     // users.reset_token_hash (nullable)
	ResetTokenExpiry *time.Time // users.reset_token_expiry (nullable)
	CreatedAt        time.Time  // users.created_at
}

// HasPendingReset reports whether the user has an unexpired reset token at now.
func (u User) HasPendingReset(now time.Time) bool {
	return u.ResetTokenHash != "" && u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now)
}

// Public strips credential and reset fields from the user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser is the sanitized representation returned to clients.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
