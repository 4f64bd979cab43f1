package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StudentModel is the local read model of enrolled students.
type StudentModel struct {
	BaseModel
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index"`
	FullName      string    `gorm:"type:varchar(200);not null"`
	GuardianPhone string    `gorm:"type:varchar(32)"`
	Active        bool      `gorm:"not null;default:true;index"`
}

func (StudentModel) TableName() string {
	return "students"
}

// FeeAssignmentModel assigns a fee concept to a student. A nil Period applies
// to every billing period.
type FeeAssignmentModel struct {
	BaseModel
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	StudentID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ConceptID   uuid.UUID       `gorm:"type:uuid;not null"`
	Description string          `gorm:"type:varchar(255)"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Tax         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Period      *string         `gorm:"type:varchar(7);index"`
}

func (FeeAssignmentModel) TableName() string {
	return "fee_assignments"
}
