package persistence

import (
	"strings"

	"github.com/sicua/backend/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause renders a safe ORDER BY expression for filter. The default
// direction applies when the filter leaves OrderDir empty.
func orderClause(filter shared.Filter, allowed map[string]bool, defaultField, defaultDir string) string {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := filter.OrderDir
	if strings.TrimSpace(dir) == "" {
		dir = defaultDir
	}
	return field + " " + ValidateSortOrder(dir)
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":              true,
	"name":            true,
	"brand":           true,
	"category_number": true,
	"price":           true,
	"quantity":        true,
	"created_at":      true,
	"updated_at":      true,
}

// CategorySortFields contains allowed sort fields for categories
var CategorySortFields = map[string]bool{
	"number":     true,
	"name":       true,
	"created_at": true,
	"updated_at": true,
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"sold_at":     true,
	"total":       true,
	"client_name": true,
	"invoiced_at": true,
}

// ImportRunSortFields contains allowed sort fields for import runs
var ImportRunSortFields = map[string]bool{
	"started_at":   true,
	"completed_at": true,
	"total_rows":   true,
	"status":       true,
}
