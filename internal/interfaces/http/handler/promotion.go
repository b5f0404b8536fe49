package handler

import (
	"context"

	promotionapp "github.com/farmacia/backend/internal/application/promotion"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PromotionService manages promotions
type PromotionService interface {
	Create(ctx context.Context, req promotionapp.PromotionRequest) (*promotionapp.PromotionResponse, error)
	Update(ctx context.Context, id uuid.UUID, req promotionapp.PromotionRequest) (*promotionapp.PromotionResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*promotionapp.PromotionResponse, error)
	ListActive(ctx context.Context) ([]promotionapp.PromotionResponse, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]promotionapp.PromotionResponse, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]promotionapp.PromotionResponse, error)
}

// PromotionHandler handles promotion endpoints
type PromotionHandler struct {
	BaseHandler
	service PromotionService
}

// NewPromotionHandler creates a new PromotionHandler
func NewPromotionHandler(service PromotionService) *PromotionHandler {
	return &PromotionHandler{service: service}
}

// ListActive lists promotions whose window contains now
func (h *PromotionHandler) ListActive(c *gin.Context) {
	promos, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, promos)
}

// Get returns one promotion
func (h *PromotionHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	promo, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, promo)
}

// ListByProduct lists every promotion targeting a product
func (h *PromotionHandler) ListByProduct(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	promos, err := h.service.ListByProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, promos)
}

// ListByCategory lists every promotion targeting a category
func (h *PromotionHandler) ListByCategory(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	promos, err := h.service.ListByCategory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, promos)
}

// Create adds a promotion
func (h *PromotionHandler) Create(c *gin.Context) {
	var req promotionapp.PromotionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	promo, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, promo)
}

// Update replaces a promotion's terms
func (h *PromotionHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req promotionapp.PromotionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	promo, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, promo)
}

// Deactivate switches a promotion off
func (h *PromotionHandler) Deactivate(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
