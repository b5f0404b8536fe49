package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/farmacia/backend/internal/domain/catalog"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Product")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads the product with SELECT ... FOR UPDATE. Must run
// inside a transaction.
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Product")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads several products; missing ids are skipped
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// FindAll returns a page of products and the total matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProductModel
	if err := paginate(query, filter, ProductSortFields, "name").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, total, nil
}

// Count counts all products
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DecrementStock subtracts quantity only while enough stock remains. The
// guard in the WHERE clause makes the update safe even without a prior row
// lock.
func (r *GormProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity < 1 {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInsufficientStock
	}
	return nil
}

// RestoreStock adds quantity back to the product
func (r *GormProductRepository) RestoreStock(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity < 1 {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Product")
	}
	return nil
}

// SetImageKey stores the object key of the product image
func (r *GormProductRepository) SetImageKey(ctx context.Context, id uuid.UUID, key string) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", id).
		Update("image_key", key)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Product")
	}
	return nil
}

// Save creates or updates a product. Used by seeding and tests; the
// catalogue itself is managed outside this service.
func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return r.db.WithContext(ctx).Save(models.ProductModelFromDomain(p)).Error
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "category_id":
			query = query.Where("category_id = ?", value)
		case "search":
			if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
				query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(s))+"%")
			}
		case "in_stock":
			if value == true {
				query = query.Where("stock > 0")
			}
		}
	}
	return query
}

// forUpdate adds a row lock where the dialect supports one
func forUpdate(db *gorm.DB) *gorm.DB {
	if isPostgres(db) {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
