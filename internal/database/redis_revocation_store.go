package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitva-auth/internal/interfaces"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ interfaces.RevocationStore = (*redisRevocationStore)(nil)

const revokedKeyPrefix = "revoked_token:"

type redisRevocationStore struct {
	client *redis.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewRedisRevocationStore keeps revoked token IDs as keys that expire together with the token.
func NewRedisRevocationStore(client *redis.Client, logger *zap.Logger) interfaces.RevocationStore {
	return &redisRevocationStore{
		client: client,
		logger: logger.Named("RedisRevocationStore"),
		now:    time.Now,
	}
}

// Revoke stores the token ID until expiresAt. SET NX keeps a second revoke a no-op.
func (s *redisRevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		s.logger.Debug("Token already expired, nothing to revoke")
		return nil
	}
	key := revokedKeyPrefix + tokenID
	if err := s.client.SetNX(ctx, key, 1, ttl).Err(); err != nil {
		s.logger.Error("Failed to revoke token in redis", zap.Error(err))
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Debug("Token revoked", zap.Duration("ttl", ttl))
	return nil
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	key := revokedKeyPrefix + tokenID
	err := s.client.Get(ctx, key).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		s.logger.Error("Failed to check revoked token in redis", zap.Error(err))
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return true, nil
}
