package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stratton-prime/certexam-backend/internal/config"
)

// RedisSessionLock stores the per-identity "exam in progress" flag. Keys have
// no TTL: a forfeited attempt keeps its lock until an admin releases it.
type RedisSessionLock struct {
	rdb *redis.Client
}

// NewRedisSessionLock creates a new RedisSessionLock.
func NewRedisSessionLock(rdb *redis.Client) *RedisSessionLock {
	return &RedisSessionLock{rdb: rdb}
}

// Acquire sets the lock with SETNX and reports whether this call took it.
func (l *RedisSessionLock) Acquire(ctx context.Context, identity, sessionID string) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, config.CacheKey.SessionLockKey(identity), sessionID, 0).Result()
	if err != nil {
		return false, fmt.Errorf("setnx session lock: %w", err)
	}
	return ok, nil
}

// Release clears the lock. Releasing a free lock is a no-op.
func (l *RedisSessionLock) Release(ctx context.Context, identity string) error {
	return l.rdb.Del(ctx, config.CacheKey.SessionLockKey(identity)).Err()
}

// Held reports whether the identity has an exam in progress.
func (l *RedisSessionLock) Held(ctx context.Context, identity string) (bool, error) {
	n, err := l.rdb.Exists(ctx, config.CacheKey.SessionLockKey(identity)).Result()
	if err != nil {
		return false, fmt.Errorf("check session lock: %w", err)
	}
	return n > 0, nil
}
