package promotion

import (
	"context"
	"strings"
	"time"

	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind identifies how a promotion changes a line price
type Kind string

const (
	KindPercentageOrFixed Kind = "percentage_or_fixed"
	KindBulkOffer         Kind = "bulk_offer"
)

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	return k == KindPercentageOrFixed || k == KindBulkOffer
}

var hundred = decimal.NewFromInt(100)

// Promotion is a time-boxed discount targeting a product, a category, or both.
// Promotions are never physically removed; deleting one clears Active.
type Promotion struct {
	shared.BaseEntity
	Description     string
	Kind            Kind
	ProductID       *uuid.UUID
	CategoryID      *uuid.UUID
	DiscountPercent decimal.Decimal
	FixedDiscount   decimal.Decimal
	OfferQuantity   int
	OfferPay        int
	StartDate       time.Time
	EndDate         time.Time
	Active          bool
}

// Params carries the mutable fields of a promotion
type Params struct {
	Description     string
	Kind            Kind
	ProductID       *uuid.UUID
	CategoryID      *uuid.UUID
	DiscountPercent decimal.Decimal
	FixedDiscount   decimal.Decimal
	OfferQuantity   int
	OfferPay        int
	StartDate       time.Time
	EndDate         time.Time
}

// NewPromotion creates an active promotion after validating params
func NewPromotion(p Params, now time.Time) (*Promotion, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	promo := &Promotion{BaseEntity: shared.NewBaseEntity(now), Active: true}
	promo.apply(p)
	return promo, nil
}

// Update replaces the promotion terms
func (p *Promotion) Update(params Params, now time.Time) error {
	if err := params.validate(); err != nil {
		return err
	}
	p.apply(params)
	p.Touch(now)
	return nil
}

// Deactivate hides the promotion from resolution while keeping it for receipts
func (p *Promotion) Deactivate(now time.Time) {
	p.Active = false
	p.Touch(now)
}

// AppliesTo reports whether the promotion is live at now and targets the
// product or its category.
func (p *Promotion) AppliesTo(productID, categoryID uuid.UUID, now time.Time) bool {
	if !p.Active || now.Before(p.StartDate) || now.After(p.EndDate) {
		return false
	}
	if p.ProductID != nil && *p.ProductID == productID {
		return true
	}
	return p.CategoryID != nil && *p.CategoryID == categoryID
}

func (p *Promotion) apply(params Params) {
	p.Description = strings.TrimSpace(params.Description)
	p.Kind = params.Kind
	p.ProductID = params.ProductID
	p.CategoryID = params.CategoryID
	p.StartDate = params.StartDate.UTC()
	p.EndDate = params.EndDate.UTC()
	switch params.Kind {
	case KindPercentageOrFixed:
		p.DiscountPercent = params.DiscountPercent
		p.FixedDiscount = params.FixedDiscount
		p.OfferQuantity, p.OfferPay = 0, 0
	case KindBulkOffer:
		p.DiscountPercent, p.FixedDiscount = decimal.Zero, decimal.Zero
		p.OfferQuantity = params.OfferQuantity
		p.OfferPay = params.OfferPay
	}
}

func (p Params) validate() error {
	if !p.Kind.IsValid() {
		return shared.NewValidationError("INVALID_PROMOTION", "Unknown promotion kind: "+string(p.Kind))
	}
	if p.ProductID == nil && p.CategoryID == nil {
		return shared.NewValidationError("INVALID_PROMOTION", "Promotion must target a product or a category")
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() || p.EndDate.Before(p.StartDate) {
		return shared.NewValidationError("INVALID_PROMOTION", "Promotion end date must not precede its start date")
	}

	switch p.Kind {
	case KindPercentageOrFixed:
		if p.DiscountPercent.IsNegative() || p.DiscountPercent.GreaterThan(hundred) {
			return shared.NewValidationError("INVALID_PROMOTION", "Discount percent must be between 0 and 100")
		}
		if p.FixedDiscount.IsNegative() {
			return shared.NewValidationError("INVALID_PROMOTION", "Fixed discount cannot be negative")
		}
		if p.DiscountPercent.IsZero() && p.FixedDiscount.IsZero() {
			return shared.NewValidationError("INVALID_PROMOTION", "Percentage or fixed discount is required")
		}
	case KindBulkOffer:
		if p.OfferQuantity <= 0 || p.OfferPay <= 0 {
			return shared.NewValidationError("INVALID_PROMOTION", "Bulk offers need positive offer quantity and offer pay")
		}
		if p.OfferPay > p.OfferQuantity {
			return shared.NewValidationError("INVALID_PROMOTION", "Offer pay cannot exceed offer quantity")
		}
	}
	return nil
}

// Repository persists promotions
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Promotion, error)
	Save(ctx context.Context, promotion *Promotion) error

	// FindCandidates returns active promotions whose window contains now and
	// that target productID or categoryID.
	FindCandidates(ctx context.Context, productID, categoryID uuid.UUID, now time.Time) ([]Promotion, error)

	FindActive(ctx context.Context, now time.Time) ([]Promotion, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]Promotion, error)
	FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]Promotion, error)
}
