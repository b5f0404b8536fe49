package storage

import (
	"context"
	"fmt"

	catalogapp "github.com/farmacia/backend/internal/application/catalog"
	"github.com/farmacia/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New returns the S3 store when storage is enabled and the local store
// otherwise. The bucket is created on first use of an S3 store.
func New(ctx context.Context, cfg config.StorageConfig, baseURL string, logger *zap.Logger) (catalogapp.ObjectStorageService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("Object storage disabled, serving image URLs locally")
		return NewLocalImageStore(baseURL, nil), nil
	}

	store, err := NewS3ImageStore(cfg, WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare image bucket: %w", err)
	}
	logger.Info("Object storage ready", zap.String("bucket", store.Bucket()))
	return store, nil
}
