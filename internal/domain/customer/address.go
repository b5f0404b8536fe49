package customer

import (
	"context"
	"strings"
	"time"

	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Address is a delivery point owned by a user.
type Address struct {
	shared.BaseEntity
	UserID    uuid.UUID
	Label     string
	Street    string
	City      string
	Latitude  float64
	Longitude float64
}

// NewAddress validates coordinates and creates an address for userID.
func NewAddress(userID uuid.UUID, label, street, city string, lat, lng float64, now time.Time) (*Address, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ADDRESS", "Address owner is required")
	}
	if lat < -90 || lat > 90 {
		return nil, shared.NewValidationError("INVALID_ADDRESS", "Latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return nil, shared.NewValidationError("INVALID_ADDRESS", "Longitude must be between -180 and 180")
	}
	street = strings.TrimSpace(street)
	if street == "" {
		return nil, shared.NewValidationError("INVALID_ADDRESS", "Street cannot be empty")
	}

	return &Address{
		BaseEntity: shared.NewBaseEntity(now),
		UserID:     userID,
		Label:      strings.TrimSpace(label),
		Street:     street,
		City:       strings.TrimSpace(city),
		Latitude:   lat,
		Longitude:  lng,
	}, nil
}

// BelongsTo reports whether userID owns the address.
func (a *Address) BelongsTo(userID uuid.UUID) bool {
	return a.UserID == userID
}

// AddressRepository persists addresses.
type AddressRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Address, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Address, error)
	Save(ctx context.Context, address *Address) error
	Delete(ctx context.Context, id uuid.UUID) error

	// IsReferenced reports whether any order points at the address.
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)
}
