package address

import (
	"time"

	"github.com/farmacia/backend/internal/domain/customer"
	"github.com/google/uuid"
)

// CreateAddressRequest is the body of an address creation
type CreateAddressRequest struct {
	Label     string  `json:"label" binding:"max=100"`
	Street    string  `json:"street" binding:"required,max=300"`
	City      string  `json:"city" binding:"max=100"`
	Latitude  float64 `json:"latitude" binding:"latitude"`
	Longitude float64 `json:"longitude" binding:"longitude"`
}

// AddressResponse is the stored state of an address
type AddressResponse struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label,omitempty"`
	Street    string    `json:"street"`
	City      string    `json:"city,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// ToAddressResponse converts a domain address
func ToAddressResponse(a *customer.Address) AddressResponse {
	return AddressResponse{
		ID:        a.ID,
		Label:     a.Label,
		Street:    a.Street,
		City:      a.City,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
		CreatedAt: a.CreatedAt,
	}
}
