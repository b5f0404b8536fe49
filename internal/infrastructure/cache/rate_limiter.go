package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRateLimitPrefix namespaces rate-limit counters in a shared redis
const DefaultRateLimitPrefix = "farmacia:ratelimit:"

// RedisRateLimiter is a fixed-window counter shared by every replica. The
// first hit of a window sets the expiry, so a window always closes even if
// the process dies mid-request.
type RedisRateLimiter struct {
	client    redis.UniversalClient
	keyPrefix string
	limit     int
	window    time.Duration
}

// NewRedisRateLimiter allows limit requests per key per window
func NewRedisRateLimiter(client redis.UniversalClient, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:    client,
		keyPrefix: DefaultRateLimitPrefix,
		limit:     limit,
		window:    window,
	}
}

// Allow counts one request for key and reports whether it fits the window
// along with the requests left.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	k := l.keyPrefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to count request for %s: %w", key, err)
	}

	count := int(incr.Val())
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= l.limit, remaining, nil
}

// Limit returns the requests allowed per window
func (l *RedisRateLimiter) Limit() int {
	return l.limit
}
