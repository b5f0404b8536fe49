package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces idempotency keys in a shared redis
const DefaultKeyPrefix = "farmacia:idempotency:"

var _ shared.IdempotencyStore = (*RedisStore)(nil)

// RedisStore shares idempotency state across replicas. Claims use SET NX
// with an expiry so two instances racing on the same key cannot both win.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisClient connects to redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// NewRedisStore connects to redis and verifies the connection
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewRedisStoreWithClient(client, DefaultKeyPrefix), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client redis.UniversalClient, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed claims key for ttl
func (s *RedisStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark %s processed: %w", key, err)
	}
	return ok, nil
}

// IsProcessed reports whether key is currently claimed
func (s *RedisStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	return n > 0, nil
}

// Release drops the claim on key
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release %s: %w", key, err)
	}
	return nil
}

// Close closes the redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
