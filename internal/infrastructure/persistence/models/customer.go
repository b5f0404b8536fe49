package models

import (
	"github.com/farmacia/backend/internal/domain/customer"
	"github.com/google/uuid"
)

// AddressModel is the persistence model for customer.Address
type AddressModel struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Label     string    `gorm:"type:varchar(100)"`
	Street    string    `gorm:"type:varchar(300);not null"`
	City      string    `gorm:"type:varchar(100)"`
	Latitude  float64   `gorm:"not null"`
	Longitude float64   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "addresses"
}

// ToDomain converts to a domain Address
func (m *AddressModel) ToDomain() *customer.Address {
	return &customer.Address{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		Label:      m.Label,
		Street:     m.Street,
		City:       m.City,
		Latitude:   m.Latitude,
		Longitude:  m.Longitude,
	}
}

// FromDomain populates the model from a domain Address
func (m *AddressModel) FromDomain(a *customer.Address) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.UserID = a.UserID
	m.Label = a.Label
	m.Street = a.Street
	m.City = a.City
	m.Latitude = a.Latitude
	m.Longitude = a.Longitude
}
