package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is implemented by every persisted domain object
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
}

// BaseEntity carries the identity and audit timestamps shared by entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// Touch moves UpdatedAt forward to now.
func (e *BaseEntity) Touch(now time.Time) {
	e.UpdatedAt = now.UTC()
}

// NewBaseEntity creates a base entity with a fresh ID stamped at now (UTC).
func NewBaseEntity(now time.Time) BaseEntity {
	now = now.UTC()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
