package models

import (
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AccountReceivableModel is the persistence model of AccountReceivable.
type AccountReceivableModel struct {
	TenantAggregateModel
	StudentID       uuid.UUID                `gorm:"type:uuid;not null;index"`
	ConceptID       uuid.UUID                `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	PaidAmount      decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	RemainingAmount decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	DueDate         time.Time                `gorm:"type:date;not null;index"`
	Description     string                   `gorm:"type:varchar(500)"`
	Status          finance.ReceivableStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaidAt          *time.Time
}

func (AccountReceivableModel) TableName() string {
	return "account_receivables"
}

func (m *AccountReceivableModel) ToDomain() *finance.AccountReceivable {
	return &finance.AccountReceivable{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		StudentID:           m.StudentID,
		ConceptID:           m.ConceptID,
		Amount:              m.Amount,
		PaidAmount:          m.PaidAmount,
		RemainingAmount:     m.RemainingAmount,
		DueDate:             finance.DateOnly(m.DueDate),
		Description:         m.Description,
		Status:              m.Status,
		PaidAt:              m.PaidAt,
	}
}

func AccountReceivableModelFromDomain(ar *finance.AccountReceivable) *AccountReceivableModel {
	m := &AccountReceivableModel{
		StudentID:       ar.StudentID,
		ConceptID:       ar.ConceptID,
		Amount:          ar.Amount,
		PaidAmount:      ar.PaidAmount,
		RemainingAmount: ar.RemainingAmount,
		DueDate:         ar.DueDate,
		Description:     ar.Description,
		Status:          ar.Status,
		PaidAt:          ar.PaidAt,
	}
	m.FromDomainTenantAggregateRoot(ar.TenantAggregateRoot)
	return m
}

// PaymentModel is the persistence model of Payment.
type PaymentModel struct {
	TenantAggregateModel
	ReceivableID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	StudentID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	PaymentDate     time.Time             `gorm:"type:date;not null;index"`
	Method          finance.PaymentMethod `gorm:"type:varchar(20);not null;index"`
	ReferenceNumber string                `gorm:"type:varchar(100)"`
	VoucherRef      string                `gorm:"type:varchar(255)"`
	Status          finance.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ConfirmedAt     *time.Time
	ConfirmedBy     *uuid.UUID `gorm:"type:uuid"`
	RejectedAt      *time.Time
	RejectionReason string `gorm:"type:varchar(500)"`
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:varchar(500)"`
}

func (PaymentModel) TableName() string {
	return "payments"
}

func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		ReceivableID:        m.ReceivableID,
		StudentID:           m.StudentID,
		Amount:              m.Amount,
		PaymentDate:         finance.DateOnly(m.PaymentDate),
		Method:              m.Method,
		ReferenceNumber:     m.ReferenceNumber,
		VoucherRef:          m.VoucherRef,
		Status:              m.Status,
		ConfirmedAt:         m.ConfirmedAt,
		ConfirmedBy:         m.ConfirmedBy,
		RejectedAt:          m.RejectedAt,
		RejectionReason:     m.RejectionReason,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
	}
}

func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{
		ReceivableID:    p.ReceivableID,
		StudentID:       p.StudentID,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
		Method:          p.Method,
		ReferenceNumber: p.ReferenceNumber,
		VoucherRef:      p.VoucherRef,
		Status:          p.Status,
		ConfirmedAt:     p.ConfirmedAt,
		ConfirmedBy:     p.ConfirmedBy,
		RejectedAt:      p.RejectedAt,
		RejectionReason: p.RejectionReason,
		CancelledAt:     p.CancelledAt,
		CancelReason:    p.CancelReason,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

// PaymentPlanModel is the persistence model of PaymentPlan. Installments live
// in their own table.
type PaymentPlanModel struct {
	TenantAggregateModel
	StudentID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	ReceivableID     *uuid.UUID            `gorm:"type:uuid;index"`
	TotalAmount      decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	InstallmentCount int                   `gorm:"not null"`
	Frequency        finance.PlanFrequency `gorm:"type:varchar(20);not null"`
	StartDate        time.Time             `gorm:"type:date;not null"`
	Description      string                `gorm:"type:varchar(500)"`
	Status           finance.PlanStatus    `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	SuspendedAt      *time.Time
	CompletedAt      *time.Time
	CancelledAt      *time.Time
	CancelReason     string                        `gorm:"type:varchar(500)"`
	Installments     []PaymentPlanInstallmentModel `gorm:"foreignKey:PlanID"`
}

func (PaymentPlanModel) TableName() string {
	return "payment_plans"
}

func (m *PaymentPlanModel) ToDomain() *finance.PaymentPlan {
	plan := &finance.PaymentPlan{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		StudentID:           m.StudentID,
		ReceivableID:        m.ReceivableID,
		TotalAmount:         m.TotalAmount,
		InstallmentCount:    m.InstallmentCount,
		Frequency:           m.Frequency,
		StartDate:           finance.DateOnly(m.StartDate),
		Description:         m.Description,
		Status:              m.Status,
		SuspendedAt:         m.SuspendedAt,
		CompletedAt:         m.CompletedAt,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
		Installments:        make([]finance.PaymentPlanInstallment, len(m.Installments)),
	}
	for i := range m.Installments {
		plan.Installments[i] = m.Installments[i].ToDomain()
	}
	return plan
}

// PaymentPlanModelFromDomain maps the plan row only; installments are written
// separately.
func PaymentPlanModelFromDomain(p *finance.PaymentPlan) *PaymentPlanModel {
	m := &PaymentPlanModel{
		StudentID:        p.StudentID,
		ReceivableID:     p.ReceivableID,
		TotalAmount:      p.TotalAmount,
		InstallmentCount: p.InstallmentCount,
		Frequency:        p.Frequency,
		StartDate:        p.StartDate,
		Description:      p.Description,
		Status:           p.Status,
		SuspendedAt:      p.SuspendedAt,
		CompletedAt:      p.CompletedAt,
		CancelledAt:      p.CancelledAt,
		CancelReason:     p.CancelReason,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

// PaymentPlanInstallmentModel is one scheduled installment.
type PaymentPlanInstallmentModel struct {
	BaseModel
	PlanID    uuid.UUID                 `gorm:"type:uuid;not null;index;uniqueIndex:idx_installment_plan_number,priority:1"`
	Number    int                       `gorm:"not null;uniqueIndex:idx_installment_plan_number,priority:2"`
	Amount    decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	DueDate   time.Time                 `gorm:"type:date;not null;index"`
	Status    finance.InstallmentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	PaymentID *uuid.UUID                `gorm:"type:uuid;index"`
	PaidAt    *time.Time
}

func (PaymentPlanInstallmentModel) TableName() string {
	return "payment_plan_installments"
}

func (m *PaymentPlanInstallmentModel) ToDomain() finance.PaymentPlanInstallment {
	return finance.PaymentPlanInstallment{
		ID:        m.ID,
		PlanID:    m.PlanID,
		Number:    m.Number,
		Amount:    m.Amount,
		DueDate:   finance.DateOnly(m.DueDate),
		Status:    m.Status,
		PaymentID: m.PaymentID,
		PaidAt:    m.PaidAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func InstallmentModelFromDomain(i finance.PaymentPlanInstallment) PaymentPlanInstallmentModel {
	return PaymentPlanInstallmentModel{
		BaseModel: BaseModel{ID: i.ID, CreatedAt: i.CreatedAt, UpdatedAt: i.UpdatedAt},
		PlanID:    i.PlanID,
		Number:    i.Number,
		Amount:    i.Amount,
		DueDate:   i.DueDate,
		Status:    i.Status,
		PaymentID: i.PaymentID,
		PaidAt:    i.PaidAt,
	}
}

// InvoiceModel is the persistence model of Invoice. The migration also makes
// (tenant_id, invoice_number) unique.
type InvoiceModel struct {
	TenantAggregateModel
	InvoiceNumber    string                `gorm:"type:varchar(32);not null;index"`
	StudentID        uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_student_period,priority:1"`
	Period           finance.BillingPeriod `gorm:"type:varchar(7);not null;uniqueIndex:idx_invoice_student_period,priority:2"`
	Subtotal         decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Discount         decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Tax              decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Total            decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	DueDate          time.Time             `gorm:"type:date;not null;index"`
	Status           finance.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	IssuedAt         *time.Time
	PaidAt           *time.Time
	OverdueAt        *time.Time
	CancelledAt      *time.Time
	PaymentReference string             `gorm:"type:varchar(100)"`
	CancelReason     string             `gorm:"type:varchar(500)"`
	Notes            string             `gorm:"type:text"`
	Metadata         datatypes.JSONMap  `gorm:"type:jsonb"`
	Items            []InvoiceItemModel `gorm:"foreignKey:InvoiceID"`
}

func (InvoiceModel) TableName() string {
	return "invoices"
}

func (m *InvoiceModel) ToDomain() *finance.Invoice {
	inv := &finance.Invoice{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		InvoiceNumber:       m.InvoiceNumber,
		StudentID:           m.StudentID,
		Period:              m.Period,
		Subtotal:            m.Subtotal,
		Discount:            m.Discount,
		Tax:                 m.Tax,
		Total:               m.Total,
		DueDate:             finance.DateOnly(m.DueDate),
		Status:              m.Status,
		IssuedAt:            m.IssuedAt,
		PaidAt:              m.PaidAt,
		OverdueAt:           m.OverdueAt,
		CancelledAt:         m.CancelledAt,
		PaymentReference:    m.PaymentReference,
		CancelReason:        m.CancelReason,
		Notes:               m.Notes,
		Metadata:            map[string]any(m.Metadata),
		Items:               make([]finance.InvoiceItem, len(m.Items)),
	}
	for i := range m.Items {
		inv.Items[i] = m.Items[i].ToDomain()
	}
	return inv
}

func InvoiceModelFromDomain(inv *finance.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		InvoiceNumber:    inv.InvoiceNumber,
		StudentID:        inv.StudentID,
		Period:           inv.Period,
		Subtotal:         inv.Subtotal,
		Discount:         inv.Discount,
		Tax:              inv.Tax,
		Total:            inv.Total,
		DueDate:          inv.DueDate,
		Status:           inv.Status,
		IssuedAt:         inv.IssuedAt,
		PaidAt:           inv.PaidAt,
		OverdueAt:        inv.OverdueAt,
		CancelledAt:      inv.CancelledAt,
		PaymentReference: inv.PaymentReference,
		CancelReason:     inv.CancelReason,
		Notes:            inv.Notes,
		Metadata:         datatypes.JSONMap(inv.Metadata),
	}
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	return m
}

// InvoiceItemModel is one invoice line. Snapshot keeps the fee assignment as
// it was when the line was billed.
type InvoiceItemModel struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	Position    int               `gorm:"not null;default:0"`
	ConceptID   uuid.UUID         `gorm:"type:uuid;not null"`
	Description string            `gorm:"type:varchar(255)"`
	Quantity    decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	LineTotal   decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Discount    decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	Tax         decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	Snapshot    datatypes.JSONMap `gorm:"type:jsonb"`
}

func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

func (m *InvoiceItemModel) ToDomain() finance.InvoiceItem {
	return finance.InvoiceItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		ConceptID:   m.ConceptID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		LineTotal:   m.LineTotal,
		Discount:    m.Discount,
		Tax:         m.Tax,
		Snapshot:    map[string]any(m.Snapshot),
	}
}

func InvoiceItemModelFromDomain(it finance.InvoiceItem) InvoiceItemModel {
	return InvoiceItemModel{
		ID:          it.ID,
		InvoiceID:   it.InvoiceID,
		ConceptID:   it.ConceptID,
		Description: it.Description,
		Quantity:    it.Quantity,
		UnitPrice:   it.UnitPrice,
		LineTotal:   it.LineTotal,
		Discount:    it.Discount,
		Tax:         it.Tax,
		Snapshot:    datatypes.JSONMap(it.Snapshot),
	}
}
