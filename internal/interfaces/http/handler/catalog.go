package handler

import (
	"context"

	catalogapp "github.com/farmacia/backend/internal/application/catalog"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CatalogService is the read side of the catalog plus image uploads
type CatalogService interface {
	ListProducts(ctx context.Context, filter shared.Filter) ([]catalogapp.ProductResponse, int64, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
	ListCategories(ctx context.Context) ([]catalogapp.CategoryResponse, error)
	CreateImageUploadURL(ctx context.Context, productID uuid.UUID, req catalogapp.ImageUploadRequest) (*catalogapp.ImageUploadResponse, error)
}

// CatalogHandler handles product and category endpoints
type CatalogHandler struct {
	BaseHandler
	service CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListProductsQuery is the query string of GET /products
type ListProductsQuery struct {
	dto.ListRequest
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
}

// ListProducts returns a page of products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var q ListProductsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter := q.ToFilter()
	if q.CategoryID != "" {
		filter.Filters["category_id"] = uuid.MustParse(q.CategoryID)
	}

	products, total, err := h.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// GetProduct returns one product
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListCategories returns every category
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// CreateImageUploadURL issues a presigned URL for a product image
func (h *CatalogHandler) CreateImageUploadURL(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ImageUploadRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.service.CreateImageUploadURL(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
