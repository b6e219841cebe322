package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/opsease/backend/internal/domain/shared"
	"github.com/opsease/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const (
	eventKeyPrefix = "opsease:event:"
	redisDialWait  = 5 * time.Second
	redisIOWait    = 3 * time.Second
)

// NewRedisClient dials cfg and returns the client once a PING succeeds.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  redisDialWait,
		ReadTimeout:  redisIOWait,
		WriteTimeout: redisIOWait,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisDialWait)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr(), err)
	}
	return rdb, nil
}

// RedisIdempotencyStore shares forwarded event ids between replicas. Each
// id is one key that expires with its TTL.
type RedisIdempotencyStore struct {
	rdb redis.UniversalClient
}

func NewRedisIdempotencyStore(ctx context.Context, cfg config.RedisConfig) (*RedisIdempotencyStore, error) {
	rdb, err := NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &RedisIdempotencyStore{rdb: rdb}, nil
}

// MarkProcessed is a SET NX; only the first replica to mark eventID gets true.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	first, err := s.rdb.SetNX(ctx, eventKeyPrefix+eventID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event %s: %w", eventID, err)
	}
	return first, nil
}

func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, eventKeyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to look up event %s: %w", eventID, err)
	}
	return n == 1, nil
}

func (s *RedisIdempotencyStore) Close() error {
	return s.rdb.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
