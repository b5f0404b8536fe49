package models

import (
	"github.com/farmacia/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for catalog.Product
type ProductModel struct {
	BaseModel
	Name        string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	Description string          `gorm:"type:text"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0"`
	Price       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ImageKey    string          `gorm:"type:varchar(300)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Description: m.Description,
		Stock:       m.Stock,
		Price:       m.Price,
		CategoryID:  m.CategoryID,
		ImageKey:    m.ImageKey,
	}
}

// FromDomain populates the model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.Description = p.Description
	m.Stock = p.Stock
	m.Price = p.Price
	m.CategoryID = p.CategoryID
	m.ImageKey = p.ImageKey
}

// ProductModelFromDomain creates a new ProductModel
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// CategoryModel is the persistence model for catalog.Category. Categories
// are seeded by migrations and never written by the service.
type CategoryModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts to a domain Category
func (m *CategoryModel) ToDomain() catalog.Category {
	return catalog.Category{ID: m.ID, Name: m.Name}
}
