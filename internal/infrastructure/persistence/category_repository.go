package persistence

import (
	"context"
	"errors"

	"github.com/farmacia/backend/internal/domain/catalog"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Category")
		}
		return nil, err
	}
	c := model.ToDomain()
	return &c, nil
}

// FindByIDs loads several categories; missing ids are skipped
func (r *GormCategoryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Category, error) {
	if len(ids) == 0 {
		return []catalog.Category{}, nil
	}
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCategories(rows), nil
}

// FindAll returns every category ordered by name
func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toCategories(rows), nil
}

func toCategories(rows []models.CategoryModel) []catalog.Category {
	out := make([]catalog.Category, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
