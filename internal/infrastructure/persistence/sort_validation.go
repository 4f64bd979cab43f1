package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the direction to ASC or DESC (default).
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, else defaultField.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

func orderClause(field, dir string, allowed map[string]bool, defaultField string) string {
	return ValidateSortField(field, allowed, defaultField) + " " + ValidateSortOrder(dir)
}

// ReceivableSortFields are the sortable receivable columns
var ReceivableSortFields = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"due_date":         true,
	"amount":           true,
	"remaining_amount": true,
	"status":           true,
}

// PaymentSortFields are the sortable payment columns
var PaymentSortFields = map[string]bool{
	"created_at":   true,
	"payment_date": true,
	"amount":       true,
	"status":       true,
	"method":       true,
}

// PaymentPlanSortFields are the sortable plan columns
var PaymentPlanSortFields = map[string]bool{
	"created_at":   true,
	"start_date":   true,
	"total_amount": true,
	"status":       true,
}

// InvoiceSortFields are the sortable invoice columns
var InvoiceSortFields = map[string]bool{
	"created_at":     true,
	"due_date":       true,
	"invoice_number": true,
	"period":         true,
	"total":          true,
	"status":         true,
}
