package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/farmacia/backend/internal/domain/order"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID loads an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, r.db.WithContext(ctx), id)
}

// FindByIDForUpdate locks the order row, then loads its items
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, forUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormOrderRepository) findOne(ctx context.Context, query *gorm.DB, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Order")
		}
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Order("line_number ASC").
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts the order and its items
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := &models.OrderModel{}
	model.FromDomain(o)
	return r.db.WithContext(ctx).Create(model).Error
}

// UpdateState writes the mutable order columns. Items are immutable once
// the order exists.
func (r *GormOrderRepository) UpdateState(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", o.ID).
		Updates(map[string]any{
			"status":            o.Status,
			"payment_status":    o.PaymentStatus,
			"delivery_status":   o.DeliveryStatus,
			"payment_intent_id": o.PaymentIntentID,
			"updated_at":        o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Order")
	}
	return nil
}

// Delete removes the order and its items
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Delete(&models.OrderItemModel{}, "order_id = ?", id).Error; err != nil {
		return err
	}
	result := db.Delete(&models.OrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Order")
	}
	return nil
}

// FindAll pages through orders, restricted to userID when given
func (r *GormOrderRepository) FindAll(ctx context.Context, userID *uuid.UUID, filter shared.Filter) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderModel
	if err := paginate(query, filter, OrderSortFields, "created_at").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]order.Order, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// CountByUserBetween counts a user's orders created within [from, to]
func (r *GormOrderRepository) CountByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, from.UTC(), to.UTC()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ order.Repository = (*GormOrderRepository)(nil)
