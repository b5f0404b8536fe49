package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so that specific errors can be compared
// against the sentinel of their class with errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists     = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized      = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden         = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrConflict          = NewDomainError("CONFLICT", "Operation not allowed in current state")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
)

// NewNotFoundError returns a NOT_FOUND error naming the missing resource.
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError("NOT_FOUND", fmt.Sprintf("%s not found", resource))
}

// NewValidationError returns a validation error with a specific code.
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(code, message)
}

// NewInsufficientStockError names the product whose stock could not cover the request.
func NewInsufficientStockError(productName string, available, requested int) *DomainError {
	return NewDomainError("INSUFFICIENT_STOCK",
		fmt.Sprintf("Insufficient stock for %s: available %d, requested %d", productName, available, requested))
}
