package finance

import (
	"context"
	"time"

	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceivableFilter defines filtering options for receivable queries
type ReceivableFilter struct {
	shared.Filter
	StudentID   *uuid.UUID        // Filter by student
	ConceptID   *uuid.UUID        // Filter by fee concept
	Status      *ReceivableStatus // Filter by status
	DueFrom     *time.Time        // Filter by due date range start
	DueTo       *time.Time        // Filter by due date range end
	CreatedFrom *time.Time        // Filter by creation date range start
	CreatedTo   *time.Time        // Filter by creation date range end
	MinAmount   *decimal.Decimal  // Filter by minimum amount
	MaxAmount   *decimal.Decimal  // Filter by maximum amount
	OverdueAsOf *time.Time        // Only outstanding receivables due before this date
}

// ReceivableStatusTotal is one row of the per-status summary
type ReceivableStatusTotal struct {
	Status          ReceivableStatus
	Count           int64
	Amount          decimal.Decimal
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal
}

// MonthlyAmount is a count and amount for one calendar month (YYYY-MM)
type MonthlyAmount struct {
	Month  string
	Count  int64
	Amount decimal.Decimal
}

// AccountReceivableRepository defines the persistence of receivables
type AccountReceivableRepository interface {
	// FindByIDForTenant finds a receivable by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*AccountReceivable, error)

	// FindByIDForUpdate loads a receivable holding an exclusive row lock until the
	// surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*AccountReceivable, error)

	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ReceivableFilter) ([]AccountReceivable, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ReceivableFilter) (int64, error)

	// FindOutstanding returns every Pending or Partial receivable of the tenant
	FindOutstanding(ctx context.Context, tenantID uuid.UUID) ([]AccountReceivable, error)

	// Save inserts a new receivable
	Save(ctx context.Context, receivable *AccountReceivable) error

	// SaveWithLock updates with optimistic locking (version check)
	SaveWithLock(ctx context.Context, receivable *AccountReceivable) error

	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// SummarizeByStatus groups count and amounts by status
	SummarizeByStatus(ctx context.Context, tenantID uuid.UUID, filter ReceivableFilter) ([]ReceivableStatusTotal, error)

	// SumCreatedByMonth totals receivables created per month in [from, to)
	SumCreatedByMonth(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]MonthlyAmount, error)
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	ReceivableID *uuid.UUID
	StudentID    *uuid.UUID
	Status       *PaymentStatus
	Method       *PaymentMethod
	DateFrom     *time.Time
	DateTo       *time.Time
	MinAmount    *decimal.Decimal
	MaxAmount    *decimal.Decimal
}

// MethodTotal is the confirmed count and amount for one payment method
type MethodTotal struct {
	Method PaymentMethod
	Count  int64
	Amount decimal.Decimal
}

// PaymentRepository defines the persistence of payments
type PaymentRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]Payment, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) (int64, error)

	// FindByReceivable returns every payment of a receivable, any status
	FindByReceivable(ctx context.Context, tenantID, receivableID uuid.UUID) ([]Payment, error)

	// CountByReceivable counts payments of a receivable, any status
	CountByReceivable(ctx context.Context, tenantID, receivableID uuid.UUID) (int64, error)

	Save(ctx context.Context, payment *Payment) error
	SaveWithLock(ctx context.Context, payment *Payment) error

	// SumConfirmedByMonth totals confirmed payments per payment-date month in [from, to)
	SumConfirmedByMonth(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]MonthlyAmount, error)

	// SumConfirmedBetween totals confirmed payments with payment date in [from, to)
	SumConfirmedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error)

	// BreakdownByMethod groups confirmed payments with payment date in [from, to)
	BreakdownByMethod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]MethodTotal, error)
}

// PaymentPlanFilter defines filtering options for plan queries
type PaymentPlanFilter struct {
	shared.Filter
	StudentID *uuid.UUID
	Status    *PlanStatus
	Frequency *PlanFrequency
}

// PaymentPlanRepository defines the persistence of plans and their installments
type PaymentPlanRepository interface {
	// FindByIDForTenant loads a plan with its installments ordered by number
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PaymentPlan, error)

	// FindByIDForUpdate is FindByIDForTenant holding an exclusive row lock on the plan
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*PaymentPlan, error)

	// FindByPaymentIDForUpdate locks the plan owning the installment settled by
	// paymentID. Returns a NotFound error when no installment references it.
	FindByPaymentIDForUpdate(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentPlan, error)

	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentPlanFilter) ([]PaymentPlan, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentPlanFilter) (int64, error)

	// Save inserts a new plan and its installments
	Save(ctx context.Context, plan *PaymentPlan) error

	// SaveWithLock updates the plan with a version check and writes its installments,
	// removing any installment no longer part of the plan
	SaveWithLock(ctx context.Context, plan *PaymentPlan) error

	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[PlanStatus]int64, error)
}

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	StudentID *uuid.UUID
	Status    *InvoiceStatus
	Period    *BillingPeriod
	DueFrom   *time.Time
	DueTo     *time.Time
	MinTotal  *decimal.Decimal
	MaxTotal  *decimal.Decimal
}

// InvoiceRepository defines the persistence of invoices and their items
type InvoiceRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByStudentAndPeriod returns the single invoice of a student for a period
	FindByStudentAndPeriod(ctx context.Context, tenantID, studentID uuid.UUID, period BillingPeriod) (*Invoice, error)

	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) (int64, error)

	// FindOverdueCandidateIDs lists Pending invoices whose due date is before today
	FindOverdueCandidateIDs(ctx context.Context, tenantID uuid.UUID, today time.Time) ([]uuid.UUID, error)

	Save(ctx context.Context, invoice *Invoice) error
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// NextInvoiceNumber allocates the next INV-YYYYMM-NNNNN for the period
	NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID, period BillingPeriod) (string, error)
}
