package persistence

import (
	"context"
	"errors"

	"github.com/farmacia/backend/internal/domain/customer"
	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAddressRepository implements AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// FindByID finds an address by its ID
func (r *GormAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Address, error) {
	var model models.AddressModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Address")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser lists a user's addresses, newest first
func (r *GormAddressRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]customer.Address, error) {
	var rows []models.AddressModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]customer.Address, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates an address
func (r *GormAddressRepository) Save(ctx context.Context, address *customer.Address) error {
	model := &models.AddressModel{}
	model.FromDomain(address)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes an address
func (r *GormAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AddressModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Address")
	}
	return nil
}

// IsReferenced reports whether any order ships to the address
func (r *GormAddressRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("address_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ customer.AddressRepository = (*GormAddressRepository)(nil)
