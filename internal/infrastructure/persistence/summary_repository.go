package persistence

import (
	"context"
	"time"

	"github.com/farmacia/backend/internal/domain/order"
	"github.com/farmacia/backend/internal/domain/report"
	"github.com/farmacia/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSummaryRepository runs the admin dashboard aggregates
type GormSummaryRepository struct {
	db *gorm.DB
}

// NewGormSummaryRepository creates a new GormSummaryRepository
func NewGormSummaryRepository(db *gorm.DB) *GormSummaryRepository {
	return &GormSummaryRepository{db: db}
}

// CountOrdersSince counts orders created at or after since
func (r *GormSummaryRepository) CountOrdersSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("created_at >= ?", since.UTC()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumPaidRevenue sums totals of paid orders created at or after since
func (r *GormSummaryRepository) SumPaidRevenue(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("COALESCE(SUM(total), 0)").
		Where("payment_status = ?", order.PaymentStatusPaid)
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since.UTC())
	}

	var sum decimal.Decimal
	if err := query.Row().Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// CountCustomers counts distinct users across orders and profiles
func (r *GormSummaryRepository) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM (
			SELECT user_id FROM orders
			UNION
			SELECT user_id FROM user_gamification
		) AS customers`).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

var _ report.SummaryRepository = (*GormSummaryRepository)(nil)
