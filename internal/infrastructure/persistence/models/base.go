package models

import (
	"time"

	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides the id and timestamps of every table.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel adds the optimistic-lock version.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// TenantAggregateModel adds tenant partitioning and the creator.
type TenantAggregateModel struct {
	AggregateModel
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

// FromDomainTenantAggregateRoot copies identity, version and tenant from t.
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(t shared.TenantAggregateRoot) {
	m.ID = t.ID
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
	m.Version = t.Version
	m.TenantID = t.TenantID
	m.CreatedBy = t.CreatedBy
}

// TenantAggregateRoot rebuilds the domain root from the stored columns.
func (m *TenantAggregateModel) TenantAggregateRoot() shared.TenantAggregateRoot {
	return shared.RestoreTenantAggregateRoot(m.ID, m.TenantID, m.CreatedBy, m.CreatedAt, m.UpdatedAt, m.Version)
}

// All lists every model for AutoMigrate in tests. Production schema comes
// from the SQL migrations.
func All() []any {
	return []any{
		&AccountReceivableModel{},
		&PaymentModel{},
		&PaymentPlanModel{},
		&PaymentPlanInstallmentModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&StudentModel{},
		&FeeAssignmentModel{},
	}
}
