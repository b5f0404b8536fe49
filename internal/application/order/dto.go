package order

import (
	"time"

	"github.com/farmacia/backend/internal/domain/delivery"
	"github.com/farmacia/backend/internal/domain/order"
	"github.com/farmacia/backend/internal/domain/promotion"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents a request to place an order
type CreateOrderRequest struct {
	AddressID uuid.UUID              `json:"address_id" binding:"required"`
	Items     []CreateOrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// CreateOrderItemInput represents one requested product and quantity
type CreateOrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// LinePricingResponse is the priced view of one order line
type LinePricingResponse struct {
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	OriginalTotal   decimal.Decimal `json:"original_total"`
	DiscountedTotal decimal.Decimal `json:"discounted_total"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	Promotion       *promotion.Info `json:"promotion,omitempty"`
}

// RewardSummary is the caller's gamification state after an order
type RewardSummary struct {
	Level  int `json:"level"`
	Points int `json:"points"`
}

// CreateOrderResponse is returned after an order is placed
type CreateOrderResponse struct {
	OrderID        uuid.UUID             `json:"order_id"`
	Total          decimal.Decimal       `json:"total"`
	Status         string                `json:"status"`
	PaymentStatus  string                `json:"payment_status"`
	DeliveryStatus string                `json:"delivery_status"`
	Items          []LinePricingResponse `json:"items"`
	Gamification   *RewardSummary        `json:"gamification,omitempty"`
}

// OrderItemResponse is a stored order line
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	PromotionID *uuid.UUID      `json:"promotion_id,omitempty"`
}

// OrderResponse is the stored state of an order
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	AddressID       uuid.UUID           `json:"address_id"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	DeliveryStatus  string              `json:"delivery_status"`
	Total           decimal.Decimal     `json:"total"`
	PaymentIntentID string              `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	Items           []OrderItemResponse `json:"items"`
}

// OrderDetailResponse adds live pricing to the stored order. Total stays the
// figure frozen at creation; LiveTotal reprices with today's promotions.
type OrderDetailResponse struct {
	OrderResponse
	LiveTotal decimal.Decimal       `json:"live_total"`
	LiveItems []LinePricingResponse `json:"live_items"`
}

// PointResponse is a coordinate pair
type PointResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TrackingResponse is the simulated courier state
type TrackingResponse struct {
	OrderID     uuid.UUID     `json:"order_id"`
	Status      string        `json:"status"`
	Position    PointResponse `json:"position"`
	Origin      PointResponse `json:"origin"`
	Destination PointResponse `json:"destination"`
	ETASeconds  int           `json:"eta_seconds"`
	PrepSeconds int           `json:"prep_seconds"`
	UserLevel   int           `json:"user_level"`
}

// PaymentIntentResponse carries what a client needs to confirm payment
type PaymentIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// ToOrderResponse converts a domain order
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			PromotionID: item.PromotionID,
		}
	}
	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		AddressID:       o.AddressID,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		DeliveryStatus:  o.DeliveryStatus,
		Total:           o.Total,
		PaymentIntentID: o.PaymentIntentID,
		CreatedAt:       o.CreatedAt,
		Items:           items,
	}
}

// ToOrderResponses converts a slice of domain orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

func toLinePricingResponse(productID uuid.UUID, name string, line promotion.LinePricing) LinePricingResponse {
	return LinePricingResponse{
		ProductID:       productID,
		ProductName:     name,
		Quantity:        line.Quantity,
		UnitPrice:       line.UnitPrice,
		OriginalTotal:   line.OriginalTotal,
		DiscountedTotal: line.DiscountedTotal,
		DiscountApplied: line.DiscountApplied,
		Promotion:       line.Promotion,
	}
}

func toPointResponse(p delivery.Point) PointResponse {
	return PointResponse{Lat: p.Lat, Lng: p.Lng}
}

// ToTrackingResponse converts a simulator result
func ToTrackingResponse(orderID uuid.UUID, t delivery.Tracking) TrackingResponse {
	return TrackingResponse{
		OrderID:     orderID,
		Status:      t.Status,
		Position:    toPointResponse(t.Courier),
		Origin:      toPointResponse(t.Origin),
		Destination: toPointResponse(t.Destination),
		ETASeconds:  t.ETASeconds,
		PrepSeconds: t.PrepSeconds,
		UserLevel:   t.UserLevel,
	}
}
