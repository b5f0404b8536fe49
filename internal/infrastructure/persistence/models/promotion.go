package models

import (
	"time"

	"github.com/farmacia/backend/internal/domain/promotion"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PromotionModel is the persistence model for promotion.Promotion
type PromotionModel struct {
	BaseModel
	Description     string          `gorm:"type:varchar(300)"`
	Kind            promotion.Kind  `gorm:"type:varchar(30);not null"`
	ProductID       *uuid.UUID      `gorm:"type:uuid;index"`
	CategoryID      *uuid.UUID      `gorm:"type:uuid;index"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	FixedDiscount   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	OfferQuantity   int             `gorm:"not null;default:0"`
	OfferPay        int             `gorm:"not null;default:0"`
	StartDate       time.Time       `gorm:"not null"`
	EndDate         time.Time       `gorm:"not null"`
	Active          bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (PromotionModel) TableName() string {
	return "promotions"
}

// ToDomain converts to a domain Promotion
func (m *PromotionModel) ToDomain() *promotion.Promotion {
	return &promotion.Promotion{
		BaseEntity:      m.BaseModel.ToDomain(),
		Description:     m.Description,
		Kind:            m.Kind,
		ProductID:       m.ProductID,
		CategoryID:      m.CategoryID,
		DiscountPercent: m.DiscountPercent,
		FixedDiscount:   m.FixedDiscount,
		OfferQuantity:   m.OfferQuantity,
		OfferPay:        m.OfferPay,
		StartDate:       m.StartDate.UTC(),
		EndDate:         m.EndDate.UTC(),
		Active:          m.Active,
	}
}

// FromDomain populates the model from a domain Promotion
func (m *PromotionModel) FromDomain(p *promotion.Promotion) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Description = p.Description
	m.Kind = p.Kind
	m.ProductID = p.ProductID
	m.CategoryID = p.CategoryID
	m.DiscountPercent = p.DiscountPercent
	m.FixedDiscount = p.FixedDiscount
	m.OfferQuantity = p.OfferQuantity
	m.OfferPay = p.OfferPay
	m.StartDate = p.StartDate
	m.EndDate = p.EndDate
	m.Active = p.Active
}
