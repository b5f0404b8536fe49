// Package ledger exposes the append-only financial and stock audit trails.
package ledger

import (
	"context"
	"time"

	"github.com/farmacia/backend/internal/domain/order"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialMovementResponse is one money ledger entry
type FinancialMovementResponse struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	OrderID     *uuid.UUID      `json:"order_id,omitempty"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// StockMovementResponse is one stock ledger entry
type StockMovementResponse struct {
	ID        uuid.UUID  `json:"id"`
	ProductID uuid.UUID  `json:"product_id"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	Quantity  int        `json:"quantity"`
	Reason    string     `json:"reason"`
	CreatedAt time.Time  `json:"created_at"`
}

// Service lists ledger entries newest first
type Service struct {
	repo order.LedgerRepository
}

// NewService creates a new ledger Service
func NewService(repo order.LedgerRepository) *Service {
	return &Service{repo: repo}
}

// ListFinancial returns a page of financial movements
func (s *Service) ListFinancial(ctx context.Context, filter shared.Filter) (shared.Paginated[FinancialMovementResponse], error) {
	filter = filter.Normalize()
	moves, total, err := s.repo.ListFinancial(ctx, filter)
	if err != nil {
		return shared.Paginated[FinancialMovementResponse]{}, err
	}
	items := make([]FinancialMovementResponse, len(moves))
	for i, m := range moves {
		items[i] = FinancialMovementResponse{
			ID:          m.ID,
			Type:        string(m.Type),
			Amount:      m.Amount,
			OrderID:     m.OrderID,
			Description: m.Description,
			CreatedAt:   m.CreatedAt,
		}
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListStock returns a page of stock movements
func (s *Service) ListStock(ctx context.Context, filter shared.Filter) (shared.Paginated[StockMovementResponse], error) {
	filter = filter.Normalize()
	moves, total, err := s.repo.ListStock(ctx, filter)
	if err != nil {
		return shared.Paginated[StockMovementResponse]{}, err
	}
	items := make([]StockMovementResponse, len(moves))
	for i, m := range moves {
		items[i] = StockMovementResponse{
			ID:        m.ID,
			ProductID: m.ProductID,
			OrderID:   m.OrderID,
			Quantity:  m.Quantity,
			Reason:    string(m.Reason),
			CreatedAt: m.CreatedAt,
		}
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
