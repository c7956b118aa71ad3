package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/syntheses-api/internal/models"
	"github.com/noah-isme/syntheses-api/internal/session"
	appErrors "github.com/noah-isme/syntheses-api/pkg/errors"
)

// AuthConfig defines the single admin credential and session lifetime.
type AuthConfig struct {
	PasswordHash string
	SessionTTL   time.Duration
}

// AuthService guards the admin surface.
type AuthService struct {
	sessions  session.Store
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(sessions session.Store, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = time.Hour
	}
	return &AuthService{sessions: sessions, validator: validate, logger: logger, config: config}
}

// HashPassword returns the bcrypt hash stored in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login checks the admin password and opens a session.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}
	if s.config.PasswordHash == "" {
		s.logger.Error("admin login attempted without a configured password")
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.config.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("admin login rejected")
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid password")
	}

	sess, err := s.sessions.Create(ctx, s.config.SessionTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open session")
	}
	s.logger.Info("admin logged in", zap.Time("expires_at", sess.ExpiresAt))
	return &models.LoginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt}, nil
}

// Authorize reports whether token names a live session.
func (s *AuthService) Authorize(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	if _, err := s.sessions.Validate(ctx, token); err != nil {
		if !errors.Is(err, session.ErrInvalidSession) {
			s.logger.Warn("session lookup failed", zap.Error(err))
		}
		return false
	}
	return true
}

// Logout revokes the session. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke session")
	}
	s.logger.Info("admin logged out")
	return nil
}

// SessionTTL exposes the configured lifetime for cookie Max-Age.
func (s *AuthService) SessionTTL() time.Duration {
	return s.config.SessionTTL
}
