package persistence

import (
	"strings"

	"github.com/farmacia/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder normalises a direction to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted and defaultField otherwise
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields are the sortable product columns
var ProductSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
	"price":      true,
	"stock":      true,
}

// OrderSortFields are the sortable order columns
var OrderSortFields = map[string]bool{
	"created_at": true,
	"total":      true,
	"status":     true,
}

// LedgerSortFields are the sortable ledger columns
var LedgerSortFields = map[string]bool{
	"created_at": true,
}

// paginate applies whitelisted ordering and offset/limit. A secondary order
// on id keeps pages stable when the primary column has ties.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir)).Order("id ASC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}
