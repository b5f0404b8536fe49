package persistence

import (
	"context"

	gamificationapp "github.com/farmacia/backend/internal/application/gamification"
	orderapp "github.com/farmacia/backend/internal/application/order"
	"github.com/farmacia/backend/internal/domain/catalog"
	"github.com/farmacia/backend/internal/domain/gamification"
	"github.com/farmacia/backend/internal/domain/order"
	"github.com/farmacia/backend/internal/domain/promotion"
	"gorm.io/gorm"
)

// GormOrderTransactionScope runs order work in one GORM transaction
type GormOrderTransactionScope struct {
	db *gorm.DB
}

// NewGormOrderTransactionScope creates a new GormOrderTransactionScope
func NewGormOrderTransactionScope(db *gorm.DB) *GormOrderTransactionScope {
	return &GormOrderTransactionScope{db: db}
}

// Execute runs fn in a transaction, rolling back when it returns an error
func (s *GormOrderTransactionScope) Execute(ctx context.Context, fn func(repos orderapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormOrderRepositories{tx: tx})
	})
}

type gormOrderRepositories struct {
	tx *gorm.DB
}

func (r *gormOrderRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormOrderRepositories) PromotionRepo() promotion.Repository {
	return NewGormPromotionRepository(r.tx)
}

func (r *gormOrderRepositories) OrderRepo() order.Repository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormOrderRepositories) LedgerRepo() order.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

// GormGamificationTransactionScope runs reward writes in one GORM transaction
type GormGamificationTransactionScope struct {
	db *gorm.DB
}

// NewGormGamificationTransactionScope creates a new GormGamificationTransactionScope
func NewGormGamificationTransactionScope(db *gorm.DB) *GormGamificationTransactionScope {
	return &GormGamificationTransactionScope{db: db}
}

// Execute runs fn in a transaction, rolling back when it returns an error
func (s *GormGamificationTransactionScope) Execute(ctx context.Context, fn func(repos gamificationapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormGamificationRepositories{tx: tx})
	})
}

type gormGamificationRepositories struct {
	tx *gorm.DB
}

func (r *gormGamificationRepositories) ProfileRepo() gamification.ProfileRepository {
	return NewGormProfileRepository(r.tx)
}

func (r *gormGamificationRepositories) MissionRepo() gamification.MissionRepository {
	return NewGormMissionRepository(r.tx)
}

var (
	_ orderapp.TransactionScope                 = (*GormOrderTransactionScope)(nil)
	_ orderapp.TransactionalRepositories        = (*gormOrderRepositories)(nil)
	_ gamificationapp.TransactionScope          = (*GormGamificationTransactionScope)(nil)
	_ gamificationapp.TransactionalRepositories = (*gormGamificationRepositories)(nil)
)
