package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType classifies financial ledger entries
type MovementType string

const (
	MovementTypeIncome MovementType = "income"
)

// StockReason classifies stock ledger entries
type StockReason string

const (
	StockReasonSale StockReason = "sale"
)

// FinancialMovement is an append-only money ledger entry
type FinancialMovement struct {
	ID          uuid.UUID
	Type        MovementType
	Amount      decimal.Decimal
	OrderID     *uuid.UUID
	Description string
	CreatedAt   time.Time
}

// StockMovement is an append-only stock ledger entry; Quantity is signed
type StockMovement struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	OrderID   *uuid.UUID
	Quantity  int
	Reason    StockReason
	CreatedAt time.Time
}

// SaleLedgerEntries builds the audit entries written when o is confirmed:
// one income for the frozen total and one outbound movement per item.
func SaleLedgerEntries(o *Order, now time.Time) (FinancialMovement, []StockMovement) {
	orderID := o.ID
	now = now.UTC()

	income := FinancialMovement{
		ID:          uuid.New(),
		Type:        MovementTypeIncome,
		Amount:      o.Total,
		OrderID:     &orderID,
		Description: fmt.Sprintf("Payment for order %s", o.ID),
		CreatedAt:   now,
	}

	moves := make([]StockMovement, 0, len(o.Items))
	for _, item := range o.Items {
		moves = append(moves, StockMovement{
			ID:        uuid.New(),
			ProductID: item.ProductID,
			OrderID:   &orderID,
			Quantity:  -item.Quantity,
			Reason:    StockReasonSale,
			CreatedAt: now,
		})
	}
	return income, moves
}
