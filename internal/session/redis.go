// Package session keeps the set of revoked access tokens in Redis.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cineverse/internal/config"
	"cineverse/internal/logger"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked:"

// Store is a token denylist. A Store without a client revokes nothing and
// reports every token as live, so the API still runs without Redis.
type Store struct {
	client redis.Cmdable
}

// NewStore connects to Redis when an address is configured.
func NewStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg.RedisAddr == "" {
		logger.Get().Warn("REDIS_ADDR not set, token revocation disabled")
		return &Store{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Get().WithField("addr", cfg.RedisAddr).Info("redis connected")
	return &Store{client: client}, nil
}

func revokedKey(jti string) string {
	return keyPrefix + jti
}

// Revoke denies the token id until ttl elapses, which should be the
// token's remaining lifetime. Expired tokens need no entry.
func (s *Store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if s.client == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKey(jti), 1, ttl).Err()
}

func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.client == nil || jti == "" {
		return false, nil
	}
	err := s.client.Get(ctx, revokedKey(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Close() error {
	if c, ok := s.client.(*redis.Client); ok {
		return c.Close()
	}
	return nil
}
