package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/syntheses-api/internal/models"
)

const keyPrefix = "session:"

// RedisStore keeps sessions in Redis so they survive restarts and can be
// shared between instances. Expiry is delegated to key TTLs.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore builds a store on client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Create issues a new session valid for ttl.
func (s *RedisStore) Create(ctx context.Context, ttl time.Duration) (models.Session, error) {
	token, err := NewToken()
	if err != nil {
		return models.Session{}, err
	}
	sess := models.Session{Token: token, ExpiresAt: time.Now().Add(ttl)}
	value := sess.ExpiresAt.UTC().Format(time.RFC3339Nano)
	if err := s.client.Set(ctx, keyPrefix+token, value, ttl).Err(); err != nil {
		return models.Session{}, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// Validate returns the live session for token.
func (s *RedisStore) Validate(ctx context.Context, token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, ErrInvalidSession
	}
	value, err := s.client.Get(ctx, keyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, ErrInvalidSession
		}
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return models.Session{}, ErrInvalidSession
	}
	sess := models.Session{Token: token, ExpiresAt: expiresAt}
	if sess.Expired(time.Now()) {
		return models.Session{}, ErrInvalidSession
	}
	return sess, nil
}

// Revoke deletes token.
func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// SweepExpired is a no-op; Redis expires keys itself.
func (s *RedisStore) SweepExpired(ctx context.Context) (int, error) {
	return 0, nil
}

// Count scans the session keyspace.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("count sessions: %w", err)
		}
		total += len(keys)
		cursor = next
		if cursor == 0 {
			return total, nil
		}
	}
}
