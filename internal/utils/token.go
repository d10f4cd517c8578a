package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// ResetTokenBytes is the amount of randomness in a reset token (256 bits).
const ResetTokenBytes = 32

// NewResetToken returns a hex-encoded token of ResetTokenBytes random bytes.
// The token is opaque: owner and expiry live on the user record.
func NewResetToken() (string, error) {
	return randomHex(ResetTokenBytes)
}

// HashResetToken returns the SHA-256 of the raw token as hex. Only this
// digest is persisted, so a leaked users table cannot be used to reset
// passwords.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns n bytes from crypto/rand encoded as hex.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
