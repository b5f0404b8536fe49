package catalog

import (
	"time"

	"github.com/farmacia/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductResponse is the public view of a product
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  uuid.UUID       `json:"category_id"`
	ImageURL    string          `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CategoryResponse is the public view of a category
type CategoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ImageUploadRequest asks for a presigned upload URL
type ImageUploadRequest struct {
	ContentType string `json:"content_type" binding:"required,oneof=image/jpeg image/png image/webp"`
}

// ImageUploadResponse carries the presigned URL and the key it will write
type ImageUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	ImageKey  string    `json:"image_key"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toProductResponse(p *catalog.Product, imageURL string) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		ImageURL:    imageURL,
		CreatedAt:   p.CreatedAt,
	}
}
