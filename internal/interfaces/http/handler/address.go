package handler

import (
	"context"

	addressapp "github.com/farmacia/backend/internal/application/address"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AddressService manages the caller's delivery addresses
type AddressService interface {
	Create(ctx context.Context, userID uuid.UUID, req addressapp.CreateAddressRequest) (*addressapp.AddressResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]addressapp.AddressResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// AddressHandler handles the caller's addresses
type AddressHandler struct {
	BaseHandler
	service AddressService
}

// NewAddressHandler creates a new AddressHandler
func NewAddressHandler(service AddressService) *AddressHandler {
	return &AddressHandler{service: service}
}

// List returns the caller's addresses
func (h *AddressHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	addresses, err := h.service.List(c.Request.Context(), actor.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addresses)
}

// Create stores a new address for the caller
func (h *AddressHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req addressapp.CreateAddressRequest
	if !h.BindJSON(c, &req) {
		return
	}
	address, err := h.service.Create(c.Request.Context(), actor.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, address)
}

// Delete removes one of the caller's addresses
func (h *AddressHandler) Delete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), actor.UserID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
