package order

import (
	"context"
	"time"

	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists orders together with their items
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForUpdate loads the order under a row lock held until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)

	// Create inserts the header and all items.
	Create(ctx context.Context, order *Order) error

	// UpdateState writes status, payment status, delivery label and payment
	// intent reference.
	UpdateState(ctx context.Context, order *Order) error

	// Delete removes the order; items are removed by cascade.
	Delete(ctx context.Context, id uuid.UUID) error

	// FindAll lists orders; a non-nil userID restricts to that owner.
	FindAll(ctx context.Context, userID *uuid.UUID, filter shared.Filter) ([]Order, int64, error)

	// CountByUserBetween counts orders created by userID within [from, to].
	CountByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error)
}

// LedgerRepository appends and lists audit entries
type LedgerRepository interface {
	AppendFinancial(ctx context.Context, movement *FinancialMovement) error
	AppendStock(ctx context.Context, movements []StockMovement) error
	ListFinancial(ctx context.Context, filter shared.Filter) ([]FinancialMovement, int64, error)
	ListStock(ctx context.Context, filter shared.Filter) ([]StockMovement, int64, error)
}
