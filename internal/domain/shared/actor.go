package shared

import "github.com/google/uuid"

// Role is the authorisation role carried by an access token
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// IsValid checks if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// IsBackOffice reports whether the actor is staff or admin
func (a Actor) IsBackOffice() bool {
	return a.Role == RoleAdmin || a.Role == RoleStaff
}

// CanAccess reports whether the actor may act on a resource owned by ownerID
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return a.IsBackOffice() || a.UserID == ownerID
}
