package persistence

import (
	"context"

	"github.com/farmacia/backend/internal/domain/order"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLedgerRepository appends to and lists the financial and stock ledgers
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// AppendFinancial inserts one money movement
func (r *GormLedgerRepository) AppendFinancial(ctx context.Context, movement *order.FinancialMovement) error {
	model := &models.FinancialMovementModel{}
	model.FromDomain(movement)
	return r.db.WithContext(ctx).Create(model).Error
}

// AppendStock inserts stock movements in one statement
func (r *GormLedgerRepository) AppendStock(ctx context.Context, movements []order.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	rows := make([]models.StockMovementModel, len(movements))
	for i := range movements {
		rows[i].FromDomain(&movements[i])
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ListFinancial pages through money movements, newest first by default
func (r *GormLedgerRepository) ListFinancial(ctx context.Context, filter shared.Filter) ([]order.FinancialMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.FinancialMovementModel{})
	if t, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", t)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.FinancialMovementModel
	if err := paginate(query, filter, LedgerSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]order.FinancialMovement, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// ListStock pages through stock movements, newest first by default
func (r *GormLedgerRepository) ListStock(ctx context.Context, filter shared.Filter) ([]order.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockMovementModel{})
	if productID, ok := filter.Filters["product_id"]; ok {
		query = query.Where("product_id = ?", productID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.StockMovementModel
	if err := paginate(query, filter, LedgerSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]order.StockMovement, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

var _ order.LedgerRepository = (*GormLedgerRepository)(nil)
