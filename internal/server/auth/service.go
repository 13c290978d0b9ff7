package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// DefaultTokenTTL is the lifetime of an issued token.
const DefaultTokenTTL = 24 * time.Hour

// ErrEmptySecret is returned by NewService when no signing secret is set.
var ErrEmptySecret = errors.New("token signing secret is empty")

// Directory is the part of the user directory the token service needs.
type Directory interface {
	FindByEmail(email string) (*models.User, bool)
	FindByID(id string) (*models.User, bool)
	ValidatePassword(ctx context.Context, plaintext, hash string) bool
}

// Session is the result of a successful login.
type Session struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// Service issues and verifies tokens. It keeps no state besides the
// signing secret.
type Service struct {
	dir      Directory
	secret   []byte
	validity time.Duration
	now      func() time.Time
	logger   logging.Logger
}

type Option func(*Service)

// WithTokenValidity overrides DefaultTokenTTL. Non-positive values are ignored.
func WithTokenValidity(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.validity = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(dir Directory, secret []byte, l logging.Logger, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	s := &Service{
		dir:      dir,
		secret:   append([]byte(nil), secret...),
		validity: DefaultTokenTTL,
		now:      time.Now,
		logger:   l.With("module", "auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token bound to user.
func (s *Service) Issue(user *models.User) (string, error) {
	return GenerateToken(user.ID, user.Email, s.secret, s.validity, s.now())
}

// Authenticate checks email and password and returns a fresh token with the
// user stripped of its hash. Unknown email and wrong password both produce
// common.ErrInvalidCredentials; a deactivated account produces
// common.ErrInactiveAccount.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	user, ok := s.dir.FindByEmail(email)
	if !ok {
		s.logger.Warn(ctx, "login attempt with unknown email", "email", email)
		return nil, common.ErrInvalidCredentials
	}

	if !user.Active {
		s.logger.Warn(ctx, "login attempt for inactive user", "user_id", user.ID)
		return nil, common.ErrInactiveAccount
	}

	if !s.dir.ValidatePassword(ctx, password, user.PasswordHash) {
		s.logger.Warn(ctx, "invalid password", "user_id", user.ID)
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.Issue(user)
	if err != nil {
		s.logger.Error(ctx, "error signing token", "user_id", user.ID, "error", err)
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &Session{Token: token, User: user.Public()}, nil
}

// Verify resolves a token to the current record of its user. Any failure,
// including an unknown or inactive user, yields false.
func (s *Service) Verify(ctx context.Context, token string) (*models.User, bool) {
	claims, err := ParseToken(token, s.secret, jwt.WithTimeFunc(s.now))
	if err != nil {
		s.logger.Warn(ctx, "token rejected", "reason", err.Error())
		return nil, false
	}

	user, ok := s.dir.FindByID(claims.UserID)
	if !ok {
		s.logger.Warn(ctx, "token rejected", "reason", "unknown subject", "user_id", claims.UserID)
		return nil, false
	}
	if !user.Active {
		s.logger.Warn(ctx, "token rejected", "reason", "inactive subject", "user_id", claims.UserID)
		return nil, false
	}

	return user, true
}
