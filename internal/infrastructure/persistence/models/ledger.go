package models

import (
	"time"

	"github.com/farmacia/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialMovementModel is an append-only money ledger row
type FinancialMovementModel struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Type        order.MovementType `gorm:"type:varchar(20);not null"`
	Amount      decimal.Decimal    `gorm:"type:decimal(14,2);not null"`
	OrderID     *uuid.UUID         `gorm:"type:uuid;index"`
	Description string             `gorm:"type:varchar(255)"`
	CreatedAt   time.Time          `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (FinancialMovementModel) TableName() string {
	return "financial_movements"
}

// ToDomain converts to a domain FinancialMovement
func (m *FinancialMovementModel) ToDomain() order.FinancialMovement {
	return order.FinancialMovement{
		ID:          m.ID,
		Type:        m.Type,
		Amount:      m.Amount,
		OrderID:     m.OrderID,
		Description: m.Description,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

// FromDomain populates the model from a domain FinancialMovement
func (m *FinancialMovementModel) FromDomain(f *order.FinancialMovement) {
	m.ID = f.ID
	m.Type = f.Type
	m.Amount = f.Amount
	m.OrderID = f.OrderID
	m.Description = f.Description
	m.CreatedAt = f.CreatedAt
}

// StockMovementModel is an append-only stock ledger row. Quantity is
// negative for outbound movements.
type StockMovementModel struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID         `gorm:"type:uuid;not null;index"`
	OrderID   *uuid.UUID        `gorm:"type:uuid;index"`
	Quantity  int               `gorm:"not null"`
	Reason    order.StockReason `gorm:"type:varchar(30);not null"`
	CreatedAt time.Time         `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts to a domain StockMovement
func (m *StockMovementModel) ToDomain() order.StockMovement {
	return order.StockMovement{
		ID:        m.ID,
		ProductID: m.ProductID,
		OrderID:   m.OrderID,
		Quantity:  m.Quantity,
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// FromDomain populates the model from a domain StockMovement
func (m *StockMovementModel) FromDomain(s *order.StockMovement) {
	m.ID = s.ID
	m.ProductID = s.ProductID
	m.OrderID = s.OrderID
	m.Quantity = s.Quantity
	m.Reason = s.Reason
	m.CreatedAt = s.CreatedAt
}
