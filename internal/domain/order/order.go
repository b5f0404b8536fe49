package order

import (
	"time"

	"github.com/farmacia/backend/internal/domain/promotion"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the fulfilment state of an order
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

// CanTransitionTo checks if the status can move to target
func (s Status) CanTransitionTo(target Status) bool {
	return s == StatusPending && target == StatusConfirmed
}

// PaymentStatus tracks whether the order has been paid
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// DeliveryStatusPreparing is the delivery label stored when an order is
// created. Later labels are derived by the delivery simulator at read time.
const DeliveryStatusPreparing = "preparing"

// Item is one line of an order with the price frozen when it was placed
type Item struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	PromotionID *uuid.UUID
}

// Order is the aggregate root for a customer purchase
type Order struct {
	shared.BaseEntity
	UserID          uuid.UUID
	AddressID       uuid.UUID
	Status          Status
	PaymentStatus   PaymentStatus
	DeliveryStatus  string
	Total           decimal.Decimal
	PaymentIntentID string
	Items           []Item
}

// NewOrder starts an empty pending, unpaid order
func NewOrder(userID, addressID uuid.UUID, now time.Time) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ORDER", "Order owner is required")
	}
	if addressID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ADDRESS", "Shipping address is required")
	}
	return &Order{
		BaseEntity:     shared.NewBaseEntity(now),
		UserID:         userID,
		AddressID:      addressID,
		Status:         StatusPending,
		PaymentStatus:  PaymentStatusUnpaid,
		DeliveryStatus: DeliveryStatusPreparing,
		Total:          decimal.Zero,
		Items:          make([]Item, 0),
	}, nil
}

// AddLine appends a priced line and adds its discounted total to Total.
// Total is never recomputed afterwards.
func (o *Order) AddLine(productID uuid.UUID, line promotion.LinePricing) (*Item, error) {
	if line.Quantity < 1 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	item := Item{
		ID:        uuid.New(),
		OrderID:   o.ID,
		ProductID: productID,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
		LineTotal: line.DiscountedTotal,
	}
	if line.Promotion != nil {
		id := line.Promotion.ID
		item.PromotionID = &id
	}
	o.Items = append(o.Items, item)
	o.Total = o.Total.Add(line.DiscountedTotal)
	return &o.Items[len(o.Items)-1], nil
}

// IsOwnedBy reports whether userID placed the order
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}

// IsPaid reports whether payment has been recorded
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// Confirm marks the order paid and confirmed
func (o *Order) Confirm(now time.Time) error {
	if o.IsPaid() {
		return shared.NewDomainError("ORDER_ALREADY_PAID", "Order has already been paid")
	}
	if !o.Status.CanTransitionTo(StatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", "Cannot confirm order in status "+string(o.Status))
	}
	o.Status = StatusConfirmed
	o.PaymentStatus = PaymentStatusPaid
	o.Touch(now)
	return nil
}

// EnsureCancellable returns an error unless the order is still pending
func (o *Order) EnsureCancellable() error {
	if o.Status != StatusPending {
		return shared.NewDomainError("ORDER_NOT_PENDING", "Only pending orders can be cancelled")
	}
	return nil
}

// AttachPaymentIntent stores the gateway reference for an unpaid order
func (o *Order) AttachPaymentIntent(intentID string, now time.Time) error {
	if o.IsPaid() {
		return shared.NewDomainError("ORDER_ALREADY_PAID", "Order has already been paid")
	}
	o.PaymentIntentID = intentID
	o.Touch(now)
	return nil
}

// ProductQuantities sums quantities per product
func (o *Order) ProductQuantities() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(o.Items))
	for _, item := range o.Items {
		out[item.ProductID] += item.Quantity
	}
	return out
}
