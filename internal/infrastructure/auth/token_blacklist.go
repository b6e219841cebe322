package auth

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes single tokens by their jti before they expire.
// `ledgerctl token revoke` writes entries and JWTAuth rejects them.
type TokenBlacklist interface {
	// Revoke blocks jti for ttl, normally what is left of the token's life.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const revokedKeyPrefix = "opsease:token:revoked:"

// RedisTokenBlacklist shares revocations between the CLI and every server
// replica. Keys expire with the token.
type RedisTokenBlacklist struct {
	rdb redis.UniversalClient
}

func NewRedisTokenBlacklist(rdb redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{rdb: rdb}
}

func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.rdb.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token %s: %w", jti, err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to look up token revocation: %w", err)
	}
	return n == 1, nil
}

// InMemoryTokenBlacklist only sees revocations made in this process.
type InMemoryTokenBlacklist struct {
	revoked *gocache.Cache
}

func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{revoked: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

// Revoke ignores a non-positive ttl since the token has already expired.
func (b *InMemoryTokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl > 0 {
		b.revoked.Set(jti, struct{}{}, ttl)
	}
	return nil
}

func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, found := b.revoked.Get(jti)
	return found, nil
}

var (
	_ TokenBlacklist = (*RedisTokenBlacklist)(nil)
	_ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
)
