package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
	minPasswordLen = 6
	// bcrypt ignores input past 72 bytes.
	maxPasswordLen = 72
)

var emailPattern = regexp.MustCompile(`^.+@.+\..+$`)

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidUsername reports whether the trimmed username has 3 to 32 characters.
func ValidUsername(username string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(username))
	return n >= minUsernameLen && n <= maxUsernameLen
}

// ValidEmail expects an already normalized address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPassword checks the byte length accepted by bcrypt.
func ValidPassword(password string) bool {
	return len(password) >= minPasswordLen && len(password) <= maxPasswordLen
}
