package dto

import "net/http"

// Error class codes returned in Response.Error.Code.
// Format: ERR_<CLASS>
const (
	ErrCodeInternal          = "ERR_INTERNAL"
	ErrCodeValidation        = "ERR_VALIDATION"
	ErrCodeInvalidInput      = "ERR_INVALID_INPUT"
	ErrCodeBadRequest        = "ERR_BAD_REQUEST"
	ErrCodeConflict          = "ERR_CONFLICT"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeNotFound          = "ERR_NOT_FOUND"
	ErrCodeUnauthorized      = "ERR_UNAUTHORIZED"
	ErrCodeForbidden         = "ERR_FORBIDDEN"
	ErrCodeTokenExpired      = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid      = "ERR_TOKEN_INVALID"
	ErrCodeRateLimited       = "ERR_RATE_LIMITED"
	ErrCodeRequestTooLarge   = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error class codes to HTTP status codes.
// Every client-side business failure is a 400; only identity and lookup
// failures get their own status.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeInvalidInput:      http.StatusBadRequest,
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeConflict:          http.StatusBadRequest,
	ErrCodeInsufficientStock: http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error class code.
// Unknown codes are internal errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to their class
var DomainErrorCodeMapping = map[string]string{
	// sentinels
	"INVALID_INPUT":      ErrCodeInvalidInput,
	"NOT_FOUND":          ErrCodeNotFound,
	"FORBIDDEN":          ErrCodeForbidden,
	"UNAUTHORIZED":       ErrCodeUnauthorized,
	"CONFLICT":           ErrCodeConflict,
	"ALREADY_EXISTS":     ErrCodeConflict,
	"INSUFFICIENT_STOCK": ErrCodeInsufficientStock,

	// validation
	"INVALID_ADDRESS":      ErrCodeValidation,
	"EMPTY_ORDER":          ErrCodeValidation,
	"INVALID_QUANTITY":     ErrCodeValidation,
	"INVALID_PROMOTION":    ErrCodeValidation,
	"INVALID_PRODUCT":      ErrCodeValidation,
	"INVALID_ORDER":        ErrCodeValidation,
	"INVALID_CONTENT_TYPE": ErrCodeValidation,
	"VALIDATION_ERROR":     ErrCodeValidation,

	// illegal state
	"ORDER_ALREADY_PAID": ErrCodeConflict,
	"ORDER_NOT_PENDING":  ErrCodeConflict,
	"INVALID_STATE":      ErrCodeConflict,
	"ADDRESS_IN_USE":     ErrCodeConflict,

	"INTERNAL_ERROR": ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to its class code.
// Codes already in class form pass through; anything else is internal.
func NormalizeErrorCode(code string) string {
	if class, ok := DomainErrorCodeMapping[code]; ok {
		return class
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeInternal
}
