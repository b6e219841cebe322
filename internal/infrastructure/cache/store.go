// Package cache holds the Redis and in-process stores used for event
// deduplication, token revocation and rate limiting.
package cache

import (
	"context"
	"fmt"

	"github.com/opsease/backend/internal/domain/shared"
	"github.com/opsease/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// OpenIdempotencyStore returns the Redis store when redis.enabled is set.
// With fallback, an unreachable Redis degrades to the in-process store and
// replicas may then forward the same event twice.
func OpenIdempotencyStore(ctx context.Context, cfg config.RedisConfig, fallback bool, log *zap.Logger) (shared.IdempotencyStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if !cfg.Enabled {
		log.Info("Event deduplication kept in process; redis disabled")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(ctx, cfg)
	switch {
	case err == nil:
		log.Info("Event deduplication backed by Redis", zap.String("addr", cfg.RedisAddr()))
		return store, nil
	case !fallback:
		return nil, fmt.Errorf("redis required for event deduplication: %w", err)
	}

	log.Warn("Redis unreachable, falling back to in-process event deduplication", zap.Error(err))
	return NewInMemoryIdempotencyStore(), nil
}
