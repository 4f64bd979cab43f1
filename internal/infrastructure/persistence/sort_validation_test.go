package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "DESC"},
		{"asc", "ASC"},
		{"  ASC ", "ASC"},
		{"desc", "DESC"},
		{"ASC; DROP TABLE payments;--", "DESC"},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.expected, ValidateSortOrder(tt.input), "input %q", tt.input)
	}
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "due_date", ValidateSortField("due_date", ReceivableSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", ReceivableSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("tenant_id", ReceivableSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("amount; --", PaymentSortFields, "created_at"))
	assert.Equal(t, "total DESC", orderClause("total", "", InvoiceSortFields, "created_at"))
}
