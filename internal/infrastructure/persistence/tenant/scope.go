// Package tenant provides explicit tenant scoping for GORM queries. The
// tenant is always passed in by the caller; nothing is read from the context.
package tenant

import (
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope restricts a query to one tenant. A nil tenant fails the query with
// shared.ErrTenantRequired instead of matching every row.
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(shared.ErrTenantRequired)
			return db
		}
		return db.Where("tenant_id = ?", tenantID)
	}
}
