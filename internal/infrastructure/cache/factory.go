package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// sweepInterval is how often the memory fallback drops expired keys
const sweepInterval = 5 * time.Minute

// NewIdempotencyStore prefers redis and falls back to memory when redis is
// unreachable, unless requireRedis is set.
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig, requireRedis bool, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Host == "" && !requireRedis {
		logger.Info("Redis not configured, using in-memory idempotency store")
		return NewMemoryStore(nil, sweepInterval), nil
	}

	store, err := NewRedisStore(ctx, cfg)
	if err == nil {
		logger.Info("Using redis idempotency store", zap.String("addr", cfg.Addr()))
		return store, nil
	}
	if requireRedis {
		return nil, fmt.Errorf("redis required for idempotency: %w", err)
	}

	logger.Warn("Redis unavailable, using in-memory idempotency store; rewards may repeat across replicas",
		zap.Error(err),
	)
	return NewMemoryStore(nil, sweepInterval), nil
}
