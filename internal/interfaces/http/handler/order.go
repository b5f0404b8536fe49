package handler

import (
	"context"

	orderapp "github.com/farmacia/backend/internal/application/order"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderService is the order pipeline used by OrderHandler
type OrderService interface {
	Create(ctx context.Context, userID uuid.UUID, req orderapp.CreateOrderRequest) (*orderapp.CreateOrderResponse, error)
	Confirm(ctx context.Context, orderID uuid.UUID, actor shared.Actor) (*orderapp.OrderResponse, error)
	Cancel(ctx context.Context, orderID uuid.UUID, actor shared.Actor) error
	GetDetails(ctx context.Context, orderID uuid.UUID, actor shared.Actor) (*orderapp.OrderDetailResponse, error)
	List(ctx context.Context, actor shared.Actor, filter shared.Filter) ([]orderapp.OrderResponse, int64, error)
	Track(ctx context.Context, orderID uuid.UUID, actor shared.Actor) (*orderapp.TrackingResponse, error)
	CreatePaymentIntent(ctx context.Context, orderID uuid.UUID, actor shared.Actor) (*orderapp.PaymentIntentResponse, error)
}

// OrderHandler handles order placement, lifecycle and tracking
type OrderHandler struct {
	BaseHandler
	orderService OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// ListOrdersQuery is the query string of GET /orders
type ListOrdersQuery struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=pending confirmed"`
}

// Create places an order for the caller
func (h *OrderHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req orderapp.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.orderService.Create(c.Request.Context(), actor.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns the caller's orders, or every order for staff and admin
func (h *OrderHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q ListOrdersQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter := q.ToFilter()
	if q.Status != "" {
		filter.Filters["status"] = q.Status
	}

	orders, total, err := h.orderService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Get returns the order with its live repricing
func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	resp, err := h.orderService.GetDetails(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Confirm marks the order paid and writes its ledger entries
func (h *OrderHandler) Confirm(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	resp, err := h.orderService.Confirm(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel deletes a pending order and restores its stock
func (h *OrderHandler) Cancel(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.Cancel(c.Request.Context(), id, actor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Track returns the simulated courier position of a paid order
func (h *OrderHandler) Track(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	resp, err := h.orderService.Track(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreatePaymentIntent opens a payment with the gateway for the order total
func (h *OrderHandler) CreatePaymentIntent(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	resp, err := h.orderService.CreatePaymentIntent(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
