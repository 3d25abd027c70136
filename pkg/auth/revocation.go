package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisRevocationStore keeps revoked token ids in Redis, keyed by jti and
// expiring with the token itself.
type redisRevocationStore struct {
	client *redis.Client
}

// NewRedisRevocationStore creates a RevocationStore backed by Redis.
// Returns nil when client is nil so callers can pass the optional client
// straight through.
func NewRedisRevocationStore(client *redis.Client) RevocationStore {
	if client == nil {
		return nil
	}
	return &redisRevocationStore{client: client}
}

func revocationKey(jti string) string {
	return "gigplane:revoked:" + jti
}

func (s *redisRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.client.Set(ctx, revocationKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store revocation: %w", err)
	}
	return nil
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revocationKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to query revocation: %w", err)
	}
	return n > 0, nil
}
