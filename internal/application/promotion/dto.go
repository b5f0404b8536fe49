package promotion

import (
	"time"

	"github.com/farmacia/backend/internal/domain/promotion"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromotionRequest is the body of create and update calls
type PromotionRequest struct {
	Description     string          `json:"description" binding:"max=500"`
	Kind            string          `json:"kind" binding:"required,oneof=percentage_or_fixed bulk_offer"`
	ProductID       *uuid.UUID      `json:"product_id"`
	CategoryID      *uuid.UUID      `json:"category_id"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	FixedDiscount   decimal.Decimal `json:"fixed_discount"`
	OfferQuantity   int             `json:"offer_quantity" binding:"min=0"`
	OfferPay        int             `json:"offer_pay" binding:"min=0"`
	StartDate       time.Time       `json:"start_date" binding:"required"`
	EndDate         time.Time       `json:"end_date" binding:"required"`
}

func (r PromotionRequest) params() promotion.Params {
	return promotion.Params{
		Description:     r.Description,
		Kind:            promotion.Kind(r.Kind),
		ProductID:       r.ProductID,
		CategoryID:      r.CategoryID,
		DiscountPercent: r.DiscountPercent,
		FixedDiscount:   r.FixedDiscount,
		OfferQuantity:   r.OfferQuantity,
		OfferPay:        r.OfferPay,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
	}
}

// PromotionResponse is the stored state of a promotion
type PromotionResponse struct {
	ID              uuid.UUID       `json:"id"`
	Description     string          `json:"description"`
	Kind            string          `json:"kind"`
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	FixedDiscount   decimal.Decimal `json:"fixed_discount"`
	OfferQuantity   int             `json:"offer_quantity"`
	OfferPay        int             `json:"offer_pay"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToPromotionResponse converts a domain promotion
func ToPromotionResponse(p *promotion.Promotion) PromotionResponse {
	return PromotionResponse{
		ID:              p.ID,
		Description:     p.Description,
		Kind:            string(p.Kind),
		ProductID:       p.ProductID,
		CategoryID:      p.CategoryID,
		DiscountPercent: p.DiscountPercent,
		FixedDiscount:   p.FixedDiscount,
		OfferQuantity:   p.OfferQuantity,
		OfferPay:        p.OfferPay,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		Active:          p.Active,
		CreatedAt:       p.CreatedAt,
	}
}

// ToPromotionResponses converts a slice of domain promotions
func ToPromotionResponses(promos []promotion.Promotion) []PromotionResponse {
	out := make([]PromotionResponse, len(promos))
	for i := range promos {
		out[i] = ToPromotionResponse(&promos[i])
	}
	return out
}
