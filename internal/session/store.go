package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/syntheses-api/internal/models"
)

// ErrInvalidSession is returned for unknown, expired or revoked tokens.
var ErrInvalidSession = errors.New("invalid session")

const tokenBytes = 32

// Store keeps admin sessions until they expire or are revoked.
type Store interface {
	Create(ctx context.Context, ttl time.Duration) (models.Session, error)
	Validate(ctx context.Context, token string) (models.Session, error)
	Revoke(ctx context.Context, token string) error
	SweepExpired(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

// NewToken returns an unguessable URL-safe token.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
