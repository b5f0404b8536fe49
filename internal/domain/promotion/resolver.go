package promotion

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRef is the slice of a product the resolver needs
type ProductRef struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
	Price      decimal.Decimal
}

// Info describes the promotion that priced a line
type Info struct {
	ID              uuid.UUID       `json:"id"`
	Kind            Kind            `json:"kind"`
	Description     string          `json:"description,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	FixedDiscount   decimal.Decimal `json:"fixed_discount"`
	OfferQuantity   int             `json:"offer_quantity"`
	OfferPay        int             `json:"offer_pay"`
}

// LinePricing is the priced result for one order line
type LinePricing struct {
	Quantity        int
	UnitPrice       decimal.Decimal
	OriginalTotal   decimal.Decimal
	DiscountedTotal decimal.Decimal
	DiscountApplied decimal.Decimal
	Promotion       *Info
}

// HasPromotion reports whether a promotion priced the line
func (l LinePricing) HasPromotion() bool {
	return l.Promotion != nil
}

// Select picks the applicable promotion with the lowest id, or nil.
func Select(candidates []Promotion, product ProductRef, now time.Time) *Promotion {
	var chosen *Promotion
	for i := range candidates {
		c := &candidates[i]
		if !c.AppliesTo(product.ID, product.CategoryID, now) {
			continue
		}
		if chosen == nil || bytes.Compare(c.ID[:], chosen.ID[:]) < 0 {
			chosen = c
		}
	}
	return chosen
}

// Resolve prices quantity units of product at now. At most one promotion
// from candidates applies; promotions never stack.
func Resolve(product ProductRef, quantity int, now time.Time, candidates []Promotion) LinePricing {
	qty := decimal.NewFromInt(int64(quantity))
	original := product.Price.Mul(qty)

	line := LinePricing{
		Quantity:        quantity,
		UnitPrice:       product.Price,
		OriginalTotal:   original,
		DiscountedTotal: original,
		DiscountApplied: decimal.Zero,
	}

	promo := Select(candidates, product, now)
	if promo == nil {
		return line
	}

	discounted, ok := discountedTotal(promo, product.Price, quantity)
	if !ok {
		return line
	}

	line.DiscountedTotal = discounted
	line.DiscountApplied = original.Sub(discounted)
	line.Promotion = &Info{
		ID:              promo.ID,
		Kind:            promo.Kind,
		Description:     promo.Description,
		DiscountPercent: promo.DiscountPercent,
		FixedDiscount:   promo.FixedDiscount,
		OfferQuantity:   promo.OfferQuantity,
		OfferPay:        promo.OfferPay,
	}
	return line
}

// discountedTotal applies promo; ok is false when its parameters are unusable.
func discountedTotal(promo *Promotion, price decimal.Decimal, quantity int) (decimal.Decimal, bool) {
	switch promo.Kind {
	case KindPercentageOrFixed:
		unit := DiscountedUnit(price, promo.DiscountPercent, promo.FixedDiscount)
		return unit.Mul(decimal.NewFromInt(int64(quantity))), true
	case KindBulkOffer:
		if promo.OfferQuantity <= 0 || promo.OfferPay <= 0 {
			return decimal.Zero, false
		}
		groups := quantity / promo.OfferQuantity
		remainder := quantity % promo.OfferQuantity
		payable := int64(groups*promo.OfferPay + remainder)
		return price.Mul(decimal.NewFromInt(payable)), true
	default:
		return decimal.Zero, false
	}
}

// DiscountedUnit returns max(0, price*(1-percent/100) - fixed), rounded to
// cents.
func DiscountedUnit(price, percent, fixed decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(percent.Div(hundred))
	unit := price.Mul(factor).Sub(fixed).Round(2)
	if unit.IsNegative() {
		return decimal.Zero
	}
	return unit
}
