package models

import (
	"time"

	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel maps shared.BaseEntity
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts to a domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// FromDomainBaseEntity populates the model from a domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// All returns every model in dependency order. Tests use it with
// AutoMigrate; production schemas come from the SQL migrations.
func All() []any {
	return []any{
		&CategoryModel{},
		&ProductModel{},
		&AddressModel{},
		&PromotionModel{},
		&OrderModel{},
		&OrderItemModel{},
		&FinancialMovementModel{},
		&StockMovementModel{},
		&ProfileModel{},
		&MissionModel{},
		&UserMissionModel{},
	}
}
