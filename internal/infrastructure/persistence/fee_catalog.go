package persistence

import (
	"context"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/infrastructure/persistence/models"
	"github.com/campusledger/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// GormFeeCatalog resolves billable items from fee assignments. Assignments
// without a period recur every month; assignments pinned to a period apply
// only to that month.
type GormFeeCatalog struct {
	db *gorm.DB
}

// NewGormFeeCatalog creates a new GormFeeCatalog
func NewGormFeeCatalog(db *gorm.DB) *GormFeeCatalog {
	return &GormFeeCatalog{db: db}
}

// BillableItems returns the items a student owes for period
func (c *GormFeeCatalog) BillableItems(ctx context.Context, tenantID, studentID uuid.UUID, period finance.BillingPeriod) ([]finance.BillableItem, error) {
	var rows []models.FeeAssignmentModel
	if err := c.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("student_id = ?", studentID).
		Where("period IS NULL OR period = ?", period.String()).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return lo.Map(rows, func(m models.FeeAssignmentModel, _ int) finance.BillableItem {
		return finance.BillableItem{
			ConceptID:   m.ConceptID,
			Description: m.Description,
			UnitPrice:   m.UnitPrice,
			Quantity:    m.Quantity,
			Discount:    m.Discount,
			Tax:         m.Tax,
			Snapshot: map[string]any{
				"fee_assignment_id": m.ID.String(),
				"recurring":         m.Period == nil,
			},
		}
	}), nil
}

var _ appfinance.FeeCatalog = (*GormFeeCatalog)(nil)
