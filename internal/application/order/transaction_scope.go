package order

import (
	"context"

	"github.com/farmacia/backend/internal/domain/catalog"
	"github.com/farmacia/backend/internal/domain/order"
	"github.com/farmacia/backend/internal/domain/promotion"
)

// TransactionScope runs order work atomically. If fn returns an error
// every write made through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are the repositories that share the order
// transaction. Product rows loaded through ProductRepo().FindByIDForUpdate
// stay locked until Execute returns.
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	PromotionRepo() promotion.Repository
	OrderRepo() order.Repository
	LedgerRepo() order.LedgerRepository
}

// NoOpTransactionScope hands out the same repositories without a
// transaction. Used by unit tests.
type NoOpTransactionScope struct {
	productRepo   catalog.ProductRepository
	promotionRepo promotion.Repository
	orderRepo     order.Repository
	ledgerRepo    order.LedgerRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	promotionRepo promotion.Repository,
	orderRepo order.Repository,
	ledgerRepo order.LedgerRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:   productRepo,
		promotionRepo: promotionRepo,
		orderRepo:     orderRepo,
		ledgerRepo:    ledgerRepo,
	}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository { return s.productRepo }
func (s *NoOpTransactionScope) PromotionRepo() promotion.Repository    { return s.promotionRepo }
func (s *NoOpTransactionScope) OrderRepo() order.Repository            { return s.orderRepo }
func (s *NoOpTransactionScope) LedgerRepo() order.LedgerRepository     { return s.ledgerRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
