package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/farmacia/backend/internal/domain/promotion"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPromotionRepository implements promotion.Repository using GORM
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository creates a new GormPromotionRepository
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// FindByID finds a promotion by its ID
func (r *GormPromotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Promotion, error) {
	var model models.PromotionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Promotion")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a promotion
func (r *GormPromotionRepository) Save(ctx context.Context, p *promotion.Promotion) error {
	model := &models.PromotionModel{}
	model.FromDomain(p)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindCandidates returns live promotions targeting the product or its category
func (r *GormPromotionRepository) FindCandidates(ctx context.Context, productID, categoryID uuid.UUID, now time.Time) ([]promotion.Promotion, error) {
	return r.find(r.live(ctx, now).
		Where("(product_id = ? OR category_id = ?)", productID, categoryID))
}

// FindActive returns every promotion live at now
func (r *GormPromotionRepository) FindActive(ctx context.Context, now time.Time) ([]promotion.Promotion, error) {
	return r.find(r.live(ctx, now))
}

// FindByProduct returns every promotion aimed at the product, live or not
func (r *GormPromotionRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]promotion.Promotion, error) {
	return r.find(r.db.WithContext(ctx).Where("product_id = ?", productID))
}

// FindByCategory returns every promotion aimed at the category, live or not
func (r *GormPromotionRepository) FindByCategory(ctx context.Context, categoryID uuid.UUID) ([]promotion.Promotion, error) {
	return r.find(r.db.WithContext(ctx).Where("category_id = ?", categoryID))
}

func (r *GormPromotionRepository) live(ctx context.Context, now time.Time) *gorm.DB {
	now = now.UTC()
	return r.db.WithContext(ctx).
		Where("active = ? AND start_date <= ? AND end_date >= ?", true, now, now)
}

func (r *GormPromotionRepository) find(query *gorm.DB) ([]promotion.Promotion, error) {
	var rows []models.PromotionModel
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]promotion.Promotion, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

var _ promotion.Repository = (*GormPromotionRepository)(nil)
