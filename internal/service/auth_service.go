// Package service holds the account workflows that sit between the HTTP
// handlers and the credential store.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/iliyamo/cinematch/internal/logging"
	"github.com/iliyamo/cinematch/internal/mail"
	"github.com/iliyamo/cinematch/internal/metrics"
	"github.com/iliyamo/cinematch/internal/model"
	"github.com/iliyamo/cinematch/internal/repository"
	"github.com/iliyamo/cinematch/internal/utils"
)

// UserStore is the subset of the credential store used by AuthService.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (model.User, error)
	FindUserByUsername(ctx context.Context, username string) (model.User, error)
	FindUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (model.User, error)
	InsertUser(ctx context.Context, u *model.User) error
	SetResetToken(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ResetPassword(ctx context.Context, userID, tokenHash, newHash string) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) (bool, error)
}

// SessionIssuer signs session tokens.
type SessionIssuer interface {
	Issue(userID string) (utils.SessionToken, error)
}

// AuthOptions is fixed at construction.
type AuthOptions struct {
	// ClientURL is the front-end origin used to build reset links.
	ClientURL string
	// ResetTTL is the lifetime of a password reset token.
	ResetTTL time.Duration
	// MailTimeout bounds a single email send.
	MailTimeout time.Duration
}

const (
	DefaultResetTTL    = 30 * time.Minute
	DefaultMailTimeout = 10 * time.Second
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	User      model.PublicUser
	Token     string
	ExpiresAt time.Time
}

// AuthService implements registration, login and the password reset flow.
type AuthService struct {
	store    UserStore
	hasher   PasswordHasher
	sessions SessionIssuer
	mailer   mail.Mailer
	opts     AuthOptions
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	// dummyHash is compared against when the email is unknown so that
	// login latency does not reveal which accounts exist.
	dummyHash string
}

// NewAuthService validates its dependencies and returns a ready service.
// metrics may be nil.
func NewAuthService(
	store UserStore,
	hasher PasswordHasher,
	sessions SessionIssuer,
	mailer mail.Mailer,
	opts AuthOptions,
	logger *slog.Logger,
	m *metrics.Metrics,
) (*AuthService, error) {
	if store == nil {
		return nil, oops.Errorf("user store is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("session issuer is required")
	}
	if mailer == nil {
		return nil, oops.Errorf("mailer is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = DefaultResetTTL
	}
	if opts.MailTimeout <= 0 {
		opts.MailTimeout = DefaultMailTimeout
	}
	opts.ClientURL = strings.TrimRight(opts.ClientURL, "/")

	dummy, err := hasher.Hash("cinematch-unknown-account")
	if err != nil {
		return nil, oops.With("operation", "compute dummy hash").Wrap(err)
	}

	return &AuthService{
		store:     store,
		hasher:    hasher,
		sessions:  sessions,
		mailer:    mailer,
		opts:      opts,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// WithClock returns a copy of the service reading time from now.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	cp := *s
	cp.now = now
	return &cp
}

func invalid(msg string) error {
	return oops.Code(CodeValidation).New(msg)
}

func internal(op string, err error) error {
	return oops.Code(CodeInternal).With("operation", op).Wrap(err)
}

// Register creates an account. No session is issued.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (model.PublicUser, error) {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)

	switch {
	case username == "" || email == "" || password == "":
		return model.PublicUser{}, invalid(MsgAllFieldsRequired)
	case !ValidUsername(username):
		return model.PublicUser{}, invalid(MsgInvalidUsername)
	case !ValidEmail(email):
		return model.PublicUser{}, invalid(MsgInvalidEmail)
	case !ValidPassword(password):
		return model.PublicUser{}, invalid(MsgInvalidPassword)
	}

	taken, err := s.exists(ctx, username, email)
	if err != nil {
		return model.PublicUser{}, err
	}
	if taken {
		s.metrics.AuthEvent("register", "conflict")
		return model.PublicUser{}, oops.Code(CodeConflict).New(MsgConflict)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.PublicUser{}, internal("hash password", err)
	}

	u := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.InsertUser(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			s.metrics.AuthEvent("register", "conflict")
			return model.PublicUser{}, oops.Code(CodeConflict).New(MsgConflict)
		}
		return model.PublicUser{}, internal("insert user", err)
	}

	s.metrics.AuthEvent("register", "success")
	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	return u.Public(), nil
}

func (s *AuthService) exists(ctx context.Context, username, email string) (bool, error) {
	if _, err := s.store.FindUserByUsername(ctx, username); err == nil {
		return true, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, internal("find user by username", err)
	}
	if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, internal("find user by email", err)
	}
	return false, nil
}

// Login checks the credentials and issues a session token. Unknown email
// and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, invalid(MsgLoginFieldsRequired)
	}

	u, lookupErr := s.store.FindUserByEmail(ctx, email)
	target, found := s.dummyHash, false
	if lookupErr != nil {
		if !errors.Is(lookupErr, repository.ErrNotFound) {
			return LoginResult{}, internal("find user by email", lookupErr)
		}
	} else {
		target, found = u.PasswordHash, true
	}

	// always verify so both branches cost one bcrypt comparison
	ok, verifyErr := s.hasher.Verify(password, target)
	if verifyErr != nil && found {
		logging.LogError(s.logger, "stored password hash unusable",
			oops.Code(CodeCorruptCredential).With("user_id", u.ID).Wrap(verifyErr))
		s.metrics.AuthEvent("login", "corrupt_credential")
		return LoginResult{}, oops.Code(CodeInvalidCredentials).New(MsgInvalidCredentials)
	}
	if !found || !ok {
		s.metrics.AuthEvent("login", "invalid_credentials")
		return LoginResult{}, oops.Code(CodeInvalidCredentials).New(MsgInvalidCredentials)
	}

	tok, err := s.sessions.Issue(u.ID)
	if err != nil {
		return LoginResult{}, internal("issue session", err)
	}

	s.metrics.AuthEvent("login", "success")
	return LoginResult{User: u.Public(), Token: tok.Token, ExpiresAt: tok.Exp}, nil
}

// Logout is stateless: the caller clears the cookie. A token issued before
// logout stays valid until it expires.
func (s *AuthService) Logout(ctx context.Context) {
	s.metrics.AuthEvent("logout", "success")
}

// ForgotPassword stores a fresh reset token for the account and emails the
// reset link. The token is persisted before the email is sent, so a failed
// send leaves a valid token behind until it expires.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return invalid(MsgEmailRequired)
	}

	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.AuthEvent("forgot_password", "not_found")
			return oops.Code(CodeNotFound).New(MsgNoSuchEmail)
		}
		return internal("find user by email", err)
	}

	raw, err := utils.NewResetToken()
	if err != nil {
		return internal("generate reset token", err)
	}
	exp := s.now().Add(s.opts.ResetTTL)
	if err := s.store.SetResetToken(ctx, u.ID, utils.HashResetToken(raw), exp); err != nil {
		return internal("store reset token", err)
	}

	link := s.opts.ClientURL + "/reset-password/" + raw
	sendCtx, cancel := context.WithTimeout(ctx, s.opts.MailTimeout)
	defer cancel()
	if err := s.mailer.Send(sendCtx, mail.PasswordResetMessage(u.Email, link)); err != nil {
		s.metrics.AuthEvent("forgot_password", "delivery_failure")
		return oops.Code(CodeDeliveryFailure).
			With("operation", "send reset email").
			With("user_id", u.ID).
			Wrap(err)
	}

	s.metrics.AuthEvent("forgot_password", "success")
	return nil
}

// ResetPassword redeems a reset token and sets a new password. The token is
// consumed by the same update that stores the new hash.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return invalid(MsgResetFieldsRequired)
	}
	if !ValidPassword(newPassword) {
		return invalid(MsgInvalidPassword)
	}

	digest := utils.HashResetToken(token)
	u, err := s.store.FindUserByResetToken(ctx, digest, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.AuthEvent("reset_password", "invalid_token")
			return oops.Code(CodeInvalidToken).New(MsgInvalidToken)
		}
		return internal("find user by reset token", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return internal("hash password", err)
	}
	if err := s.store.ResetPassword(ctx, u.ID, digest, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.AuthEvent("reset_password", "invalid_token")
			return oops.Code(CodeInvalidToken).New(MsgInvalidToken)
		}
		return internal("reset password", err)
	}

	s.metrics.AuthEvent("reset_password", "success")
	s.logger.InfoContext(ctx, "password reset", "user_id", u.ID)
	return nil
}
