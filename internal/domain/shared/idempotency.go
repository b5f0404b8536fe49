package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys of side effects that already ran, so a
// retried trigger does not run them twice.
type IdempotencyStore interface {
	// MarkProcessed records key with a TTL. It returns true only for the
	// caller that recorded it first.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether key has been recorded and not yet expired.
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release forgets key so the side effect may run again.
	Release(ctx context.Context, key string) error

	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL bounds how long a processed key is remembered. Default: 7 days.
	TTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     7 * 24 * time.Hour,
		Enabled: true,
	}
}
