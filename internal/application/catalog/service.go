package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/farmacia/backend/internal/domain/catalog"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectStorageService defines the object storage operations the catalog
// needs. It is implemented by the infrastructure layer (S3, MinIO, etc.)
type ObjectStorageService interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL returns a presigned GET URL and its expiry
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	DeleteObject(ctx context.Context, storageKey string) error
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ServiceConfig holds URL lifetimes
type ServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultServiceConfig returns the default URL lifetimes
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: time.Hour,
	}
}

// Service is the read-only product catalogue plus image upload issuance
type Service struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	storage      ObjectStorageService
	config       ServiceConfig
	logger       *zap.Logger
}

// NewService creates a new catalog Service
func NewService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	storage ObjectStorageService,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		storage:      storage,
		config:       DefaultServiceConfig(),
		logger:       logger,
	}
}

// SetConfig sets the service configuration
func (s *Service) SetConfig(config ServiceConfig) {
	s.config = config
}

// ListProducts returns a page of products
func (s *Service) ListProducts(ctx context.Context, filter shared.Filter) ([]ProductResponse, int64, error) {
	products, total, err := s.productRepo.FindAll(ctx, filter.Normalize())
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = toProductResponse(&products[i], s.imageURL(ctx, &products[i]))
	}
	return out, total, nil
}

// GetProduct returns one product
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(product, s.imageURL(ctx, product))
	return &resp, nil
}

// ListCategories returns every category
func (s *Service) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = CategoryResponse{ID: c.ID, Name: c.Name}
	}
	return out, nil
}

// CreateImageUploadURL issues a presigned upload for a new product image and
// points the product at it. The previous image object is removed.
func (s *Service) CreateImageUploadURL(ctx context.Context, productID uuid.UUID, req ImageUploadRequest) (*ImageUploadResponse, error) {
	ext, ok := imageExtensions[req.ContentType]
	if !ok {
		return nil, shared.NewValidationError("INVALID_CONTENT_TYPE", "Only JPEG, PNG and WebP images are accepted")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("products/%s/%s.%s", productID, uuid.New(), ext)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	if err := s.productRepo.SetImageKey(ctx, productID, key); err != nil {
		return nil, err
	}

	if product.ImageKey != "" {
		if err := s.storage.DeleteObject(ctx, product.ImageKey); err != nil {
			s.logger.Warn("Failed to delete previous product image",
				zap.String("product_id", productID.String()),
				zap.String("image_key", product.ImageKey),
				zap.Error(err),
			)
		}
	}

	return &ImageUploadResponse{UploadURL: url, ImageKey: key, ExpiresAt: expiresAt}, nil
}

// imageURL presigns the product image; failures leave the URL empty
func (s *Service) imageURL(ctx context.Context, p *catalog.Product) string {
	if p.ImageKey == "" {
		return ""
	}
	url, _, err := s.storage.GenerateDownloadURL(ctx, p.ImageKey, s.config.DownloadURLExpiry)
	if err != nil {
		s.logger.Warn("Failed to presign product image",
			zap.String("product_id", p.ID.String()),
			zap.Error(err),
		)
		return ""
	}
	return url
}
