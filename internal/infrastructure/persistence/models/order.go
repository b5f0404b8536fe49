package models

import (
	"time"

	"github.com/farmacia/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for order.Order
type OrderModel struct {
	BaseModel
	UserID          uuid.UUID           `gorm:"type:uuid;not null;index:idx_orders_user_created,priority:1"`
	AddressID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status          order.Status        `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentStatus   order.PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'"`
	DeliveryStatus  string              `gorm:"type:varchar(30);not null"`
	Total           decimal.Decimal     `gorm:"type:decimal(14,2);not null;default:0"`
	PaymentIntentID string              `gorm:"type:varchar(100)"`
	Items           []OrderItemModel    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts to a domain Order including its items
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseEntity:      m.BaseModel.ToDomain(),
		UserID:          m.UserID,
		AddressID:       m.AddressID,
		Status:          m.Status,
		PaymentStatus:   m.PaymentStatus,
		DeliveryStatus:  m.DeliveryStatus,
		Total:           m.Total,
		PaymentIntentID: m.PaymentIntentID,
		Items:           make([]order.Item, len(m.Items)),
	}
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToDomain()
	}
	return o
}

// FromDomain populates the model and its items from a domain Order
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.UserID = o.UserID
	m.AddressID = o.AddressID
	m.Status = o.Status
	m.PaymentStatus = o.PaymentStatus
	m.DeliveryStatus = o.DeliveryStatus
	m.Total = o.Total
	m.PaymentIntentID = o.PaymentIntentID
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i].FromDomain(&o.Items[i], o.CreatedAt)
		m.Items[i].LineNumber = i
	}
}

// OrderItemModel is the persistence model for order.Item
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity    int             `gorm:"not null;check:quantity > 0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	PromotionID *uuid.UUID      `gorm:"type:uuid"`
	// LineNumber is the line's index in the order as placed
	LineNumber int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts to a domain Item
func (m *OrderItemModel) ToDomain() order.Item {
	return order.Item{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		LineTotal:   m.LineTotal,
		PromotionID: m.PromotionID,
	}
}

// FromDomain populates the model from a domain Item
func (m *OrderItemModel) FromDomain(item *order.Item, createdAt time.Time) {
	m.ID = item.ID
	m.OrderID = item.OrderID
	m.ProductID = item.ProductID
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.LineTotal = item.LineTotal
	m.PromotionID = item.PromotionID
	m.CreatedAt = createdAt
}
