package utils // package utils provides the credential primitives used by the auth service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the fixed lifetime of a session token.
const DefaultSessionTTL = 7 * 24 * time.Hour

// ErrSessionInvalid is the single error returned for any token that fails
// verification. Callers cannot tell a bad signature from an expired or
// malformed token.
var ErrSessionInvalid = errors.New("invalid or expired session")

// SessionToken is a signed token together with its expiry.
type SessionToken struct {
	Token string
	Exp   time.Time
}

// SessionCodec issues and verifies HS256 session tokens. The secret is read
// once at start-up and never changes afterwards.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionCodec builds a codec signing with secret. A non-positive ttl
// selects DefaultSessionTTL.
func NewSessionCodec(secret string, ttl time.Duration) *SessionCodec {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the codec that reads time from now.
func (c *SessionCodec) WithClock(now func() time.Time) *SessionCodec {
	cp := *c
	cp.now = now
	return &cp
}

// TTL returns the lifetime applied to issued tokens.
func (c *SessionCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token whose subject is userID and which expires ttl from now.
func (c *SessionCodec) Issue(userID string) (SessionToken, error) {
	now := c.now().UTC()
	exp := now.Add(c.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// Verify checks the signature and then the expiry of raw and returns the
// subject. Every failure maps to ErrSessionInvalid.
func (c *SessionCodec) Verify(raw string) (string, error) {
	if raw == "" {
		return "", ErrSessionInvalid
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	var claims jwt.RegisteredClaims
	tok, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !tok.Valid || claims.Subject == "" {
		return "", ErrSessionInvalid
	}
	return claims.Subject, nil
}
