package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/syntheses-api/internal/models"
	"github.com/noah-isme/syntheses-api/internal/session"
	appErrors "github.com/noah-isme/syntheses-api/pkg/errors"
)

func newAuthService(t *testing.T, password string) (*AuthService, *session.MemoryStore) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	store := session.NewMemoryStore()
	svc := NewAuthService(store, nil, zap.NewNop(), AuthConfig{PasswordHash: string(hash), SessionTTL: 30 * time.Minute})
	return svc, store
}

func TestAuthLoginSuccess(t *testing.T) {
	svc, store := newAuthService(t, "s3cret")
	ctx := context.Background()

	res, err := svc.Login(ctx, models.LoginRequest{Password: "s3cret"})
	require.NoError(t, err)
	assert.Len(t, res.Token, 43)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), res.ExpiresAt, 5*time.Second)

	assert.True(t, svc.Authorize(ctx, res.Token))
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	svc, store := newAuthService(t, "s3cret")
	ctx := context.Background()

	_, err := svc.Login(ctx, models.LoginRequest{Password: "S3cret"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAuthLoginWithoutConfiguredPassword(t *testing.T) {
	svc := NewAuthService(session.NewMemoryStore(), nil, nil, AuthConfig{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Password: "anything"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	assert.Equal(t, time.Hour, svc.SessionTTL())
}

func TestAuthLogoutRevokes(t *testing.T) {
	svc, _ := newAuthService(t, "pw")
	ctx := context.Background()
	res, err := svc.Login(ctx, models.LoginRequest{Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.Token))
	assert.False(t, svc.Authorize(ctx, res.Token))
	assert.False(t, svc.Authorize(ctx, ""))
	assert.False(t, svc.Authorize(ctx, "forged"))
	assert.NoError(t, svc.Logout(ctx, ""))
}

func TestHashPasswordProducesBcrypt(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))
}
