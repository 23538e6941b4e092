// Package ratelimit throttles repeated failed logins per account.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/cryptoestate/internal/common"
	"github.com/redis/go-redis/v9"
)

// Limiter tracks failures for a key. Allow returns common.ErrTooManyAttempts
// once the number of recorded failures inside the window reaches the limit.
type Limiter interface {
	Allow(ctx context.Context, key string) error
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// Noop never throttles. It is used when no Redis address is configured.
type Noop struct{}

func (Noop) Allow(context.Context, string) error { return nil }
func (Noop) Fail(context.Context, string) error  { return nil }
func (Noop) Reset(context.Context, string) error { return nil }

// store is the part of *redis.Client the limiter needs.
type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisLimiter keeps one counter per key that expires window after the
// first failure. The increment and the expiry go out in one MULTI/EXEC. Redis being unavailable never blocks a login.
type RedisLimiter struct {
	rdb    store
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(rdb store, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

func (l *RedisLimiter) key(k string) string { return l.prefix + ":" + k }

func (l *RedisLimiter) Allow(ctx context.Context, key string) error {
	v, err := l.rdb.Get(ctx, l.key(key)).Result()
	if err != nil {
		// redis.Nil: no failures recorded; anything else: fail open
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	if n >= l.limit {
		return fmt.Errorf("%w: try again later", common.ErrTooManyAttempts)
	}
	return nil
}

func (l *RedisLimiter) Fail(ctx context.Context, key string) error {
	k := l.key(key)

	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis incr: %w", err)
	}
	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, l.key(key)).Err()
}

// NewFromConfig returns a Redis-backed limiter when addr is set and Noop
// otherwise. The returned close func releases the Redis connection pool.
func NewFromConfig(addr string, limit int, window time.Duration) (Limiter, func() error) {
	if addr == "" || limit <= 0 {
		return Noop{}, func() error { return nil }
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return NewRedisLimiter(rdb, "login-failures", limit, window), rdb.Close
}
