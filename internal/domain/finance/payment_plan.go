package finance

import (
	"fmt"
	"time"

	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanFrequency is the spacing between installment due dates
type PlanFrequency string

const (
	PlanFrequencyWeekly    PlanFrequency = "WEEKLY"
	PlanFrequencyMonthly   PlanFrequency = "MONTHLY"
	PlanFrequencyQuarterly PlanFrequency = "QUARTERLY"
	PlanFrequencySemester  PlanFrequency = "SEMESTER"
	PlanFrequencyAnnual    PlanFrequency = "ANNUAL"
)

// IsValid checks if the frequency is known
func (f PlanFrequency) IsValid() bool {
	switch f {
	case PlanFrequencyWeekly, PlanFrequencyMonthly, PlanFrequencyQuarterly,
		PlanFrequencySemester, PlanFrequencyAnnual:
		return true
	}
	return false
}

// String returns the string representation of PlanFrequency
func (f PlanFrequency) String() string {
	return string(f)
}

// DueDate returns the due date of the k-th period after start (k = 0 is start itself).
// Month based frequencies are computed from start each time so a 31st start keeps
// landing on month ends.
func (f PlanFrequency) DueDate(start time.Time, k int) time.Time {
	start = DateOnly(start)
	switch f {
	case PlanFrequencyWeekly:
		return start.AddDate(0, 0, 7*k)
	case PlanFrequencyQuarterly:
		return AddMonthsClamped(start, 3*k)
	case PlanFrequencySemester:
		return AddMonthsClamped(start, 6*k)
	case PlanFrequencyAnnual:
		return AddMonthsClamped(start, 12*k)
	default:
		return AddMonthsClamped(start, k)
	}
}

// PlanStatus represents the status of a payment plan
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "ACTIVE"
	PlanStatusSuspended PlanStatus = "SUSPENDED"
	PlanStatusCompleted PlanStatus = "COMPLETED"
	PlanStatusCancelled PlanStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PlanStatus
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanStatusActive, PlanStatusSuspended, PlanStatusCompleted, PlanStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PlanStatus
func (s PlanStatus) String() string {
	return string(s)
}

// InstallmentStatus represents the status of a single installment
type InstallmentStatus string

const (
	InstallmentStatusPending   InstallmentStatus = "PENDING"
	InstallmentStatusPaid      InstallmentStatus = "PAID"
	InstallmentStatusCancelled InstallmentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPaid, InstallmentStatusCancelled:
		return true
	}
	return false
}

const (
	MinInstallments = 2
	MaxInstallments = 60
)

// PaymentPlanInstallment is one scheduled slice of a plan
type PaymentPlanInstallment struct {
	ID        uuid.UUID         `json:"id"`
	PlanID    uuid.UUID         `json:"plan_id"`
	Number    int               `json:"number"`
	Amount    decimal.Decimal   `json:"amount"`
	DueDate   time.Time         `json:"due_date"`
	Status    InstallmentStatus `json:"status"`
	PaymentID *uuid.UUID        `json:"payment_id"`
	PaidAt    *time.Time        `json:"paid_at"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// IsOverdue returns true for a pending installment past its due date
func (i *PaymentPlanInstallment) IsOverdue(today time.Time) bool {
	return i.Status == InstallmentStatusPending && i.DueDate.Before(DateOnly(today))
}

// SplitAmount divides total into count parts: every part is total/count rounded down to
// the minor unit and the last part absorbs the remainder, so the parts always sum to
// total exactly.
func SplitAmount(total decimal.Decimal, count int) ([]decimal.Decimal, error) {
	if count < 1 {
		return nil, shared.NewValidationError("INVALID_INSTALLMENT_COUNT", "Installment count must be positive")
	}
	if err := validatePositiveAmount("Total amount", total); err != nil {
		return nil, err
	}

	base := total.Div(decimal.NewFromInt(int64(count))).RoundDown(MoneyScale)
	if base.LessThan(MinorUnit) {
		return nil, shared.NewValidationError("AMOUNT_TOO_SMALL",
			fmt.Sprintf("Total amount %s cannot be split into %d installments", total.StringFixed(MoneyScale), count))
	}

	parts := make([]decimal.Decimal, count)
	for k := 0; k < count-1; k++ {
		parts[k] = base
	}
	parts[count-1] = total.Sub(base.Mul(decimal.NewFromInt(int64(count - 1))))
	return parts, nil
}

// GenerateSchedule builds the installments of a plan
func GenerateSchedule(planID uuid.UUID, total decimal.Decimal, count int, frequency PlanFrequency, start time.Time, now time.Time) ([]PaymentPlanInstallment, error) {
	parts, err := SplitAmount(total, count)
	if err != nil {
		return nil, err
	}

	installments := make([]PaymentPlanInstallment, count)
	for k, amount := range parts {
		installments[k] = PaymentPlanInstallment{
			ID:        uuid.New(),
			PlanID:    planID,
			Number:    k + 1,
			Amount:    amount,
			DueDate:   frequency.DueDate(start, k),
			Status:    InstallmentStatusPending,
			CreatedAt: now.UTC(),
			UpdatedAt: now.UTC(),
		}
	}
	return installments, nil
}

// PaymentPlan spreads an amount owed by a student over scheduled installments.
// ReceivableID is the obligation that installment payments are applied to.
type PaymentPlan struct {
	shared.TenantAggregateRoot
	StudentID        uuid.UUID                `json:"student_id"`
	ReceivableID     *uuid.UUID               `json:"receivable_id"`
	TotalAmount      decimal.Decimal          `json:"total_amount"`
	InstallmentCount int                      `json:"installment_count"`
	Frequency        PlanFrequency            `json:"frequency"`
	StartDate        time.Time                `json:"start_date"`
	Description      string                   `json:"description"`
	Status           PlanStatus               `json:"status"`
	Installments     []PaymentPlanInstallment `json:"installments"`
	SuspendedAt      *time.Time               `json:"suspended_at"`
	CompletedAt      *time.Time               `json:"completed_at"`
	CancelledAt      *time.Time               `json:"cancelled_at"`
	CancelReason     string                   `json:"cancel_reason"`
}

// NewPaymentPlan creates an Active plan with its full installment schedule
func NewPaymentPlan(
	scope shared.TenantScope,
	studentID uuid.UUID,
	receivableID *uuid.UUID,
	total decimal.Decimal,
	count int,
	frequency PlanFrequency,
	start time.Time,
	description string,
	today time.Time,
) (*PaymentPlan, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if studentID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if err := validatePlanTerms(total, count, frequency, start, description, today); err != nil {
		return nil, err
	}

	plan := &PaymentPlan{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		StudentID:           studentID,
		ReceivableID:        receivableID,
		TotalAmount:         total,
		InstallmentCount:    count,
		Frequency:           frequency,
		StartDate:           DateOnly(start),
		Description:         description,
		Status:              PlanStatusActive,
	}

	installments, err := GenerateSchedule(plan.ID, total, count, frequency, start, plan.CreatedAt)
	if err != nil {
		return nil, err
	}
	plan.Installments = installments

	plan.AddDomainEvent(NewPaymentPlanCreatedEvent(plan))

	return plan, nil
}

func validatePlanTerms(total decimal.Decimal, count int, frequency PlanFrequency, start time.Time, description string, today time.Time) error {
	if err := validatePositiveAmount("Total amount", total); err != nil {
		return err
	}
	if count < MinInstallments || count > MaxInstallments {
		return shared.NewValidationError("INVALID_INSTALLMENT_COUNT",
			fmt.Sprintf("Installment count must be between %d and %d", MinInstallments, MaxInstallments))
	}
	if !frequency.IsValid() {
		return shared.NewValidationError("INVALID_FREQUENCY", fmt.Sprintf("Unknown frequency %q", frequency))
	}
	if start.IsZero() {
		return shared.NewValidationError("INVALID_START_DATE", "Start date is required")
	}
	if DateOnly(start).Before(DateOnly(today)) {
		return shared.NewValidationError("START_DATE_IN_PAST", "Start date cannot be in the past")
	}
	if len(description) > maxDescriptionLength {
		return shared.NewValidationError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	return nil
}

// PlanUpdate carries the optional fields of a plan edit
type PlanUpdate struct {
	TotalAmount      *decimal.Decimal
	InstallmentCount *int
	Frequency        *PlanFrequency
	StartDate        *time.Time
	Description      *string
}

func (u PlanUpdate) changesSchedule(p *PaymentPlan) bool {
	return (u.TotalAmount != nil && !u.TotalAmount.Equal(p.TotalAmount)) ||
		(u.InstallmentCount != nil && *u.InstallmentCount != p.InstallmentCount) ||
		(u.Frequency != nil && *u.Frequency != p.Frequency) ||
		(u.StartDate != nil && !DateOnly(*u.StartDate).Equal(p.StartDate))
}

// Update edits an Active plan that has no paid installment. Any change to total, count,
// frequency or start date discards and regenerates the installments. Returns whether
// the schedule was regenerated.
func (p *PaymentPlan) Update(upd PlanUpdate, today time.Time) (bool, error) {
	if p.Status != PlanStatusActive {
		return false, shared.NewInvalidStateError("PLAN_NOT_EDITABLE",
			fmt.Sprintf("Cannot edit plan in %s status", p.Status))
	}
	if p.HasPaidInstallment() {
		return false, shared.NewInvalidStateError("PLAN_HAS_PAID_INSTALLMENTS",
			"Cannot edit a plan once an installment has been paid")
	}

	total, count, frequency, start, description := p.TotalAmount, p.InstallmentCount, p.Frequency, p.StartDate, p.Description
	regenerate := upd.changesSchedule(p)
	if upd.TotalAmount != nil {
		total = *upd.TotalAmount
	}
	if upd.InstallmentCount != nil {
		count = *upd.InstallmentCount
	}
	if upd.Frequency != nil {
		frequency = *upd.Frequency
	}
	if upd.StartDate != nil {
		start = DateOnly(*upd.StartDate)
	}
	if upd.Description != nil {
		description = *upd.Description
	}

	if regenerate {
		if err := validatePlanTerms(total, count, frequency, start, description, today); err != nil {
			return false, err
		}
	} else if len(description) > maxDescriptionLength {
		return false, shared.NewValidationError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}

	p.Description = description
	p.Touch()

	if regenerate {
		installments, err := GenerateSchedule(p.ID, total, count, frequency, start, p.UpdatedAt)
		if err != nil {
			return false, err
		}
		p.TotalAmount = total
		p.InstallmentCount = count
		p.Frequency = frequency
		p.StartDate = start
		p.Installments = installments
		p.AddDomainEvent(NewPaymentPlanRegeneratedEvent(p))
	}

	p.IncrementVersion()
	return regenerate, nil
}

// Suspend pauses an Active plan
func (p *PaymentPlan) Suspend(now time.Time) error {
	if p.Status != PlanStatusActive {
		return shared.NewInvalidStateError("PLAN_NOT_ACTIVE",
			fmt.Sprintf("Cannot suspend plan in %s status", p.Status))
	}

	at := now.UTC()
	p.Status = PlanStatusSuspended
	p.SuspendedAt = &at
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentPlanStatusEvent(p, EventPaymentPlanSuspended))
	return nil
}

// Reactivate resumes a Suspended plan
func (p *PaymentPlan) Reactivate(now time.Time) error {
	if p.Status != PlanStatusSuspended {
		return shared.NewInvalidStateError("PLAN_NOT_SUSPENDED",
			fmt.Sprintf("Cannot reactivate plan in %s status", p.Status))
	}

	p.Status = PlanStatusActive
	p.SuspendedAt = nil
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentPlanStatusEvent(p, EventPaymentPlanReactivated))
	return nil
}

// Cancel ends an Active or Suspended plan and cancels its pending installments.
// Returns the number of installments cancelled.
func (p *PaymentPlan) Cancel(reason string, now time.Time) (int, error) {
	switch p.Status {
	case PlanStatusCancelled:
		return 0, shared.NewInvalidStateError("PLAN_ALREADY_CANCELLED", "Plan is already cancelled")
	case PlanStatusActive, PlanStatusSuspended:
	default:
		return 0, shared.NewInvalidStateError("PLAN_NOT_CANCELLABLE",
			fmt.Sprintf("Cannot cancel plan in %s status", p.Status))
	}

	at := now.UTC()
	cancelled := 0
	for i := range p.Installments {
		if p.Installments[i].Status == InstallmentStatusPending {
			p.Installments[i].Status = InstallmentStatusCancelled
			p.Installments[i].UpdatedAt = at
			cancelled++
		}
	}

	p.Status = PlanStatusCancelled
	p.CancelledAt = &at
	p.CancelReason = reason
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentPlanStatusEvent(p, EventPaymentPlanCancelled))
	return cancelled, nil
}

// Installment returns the installment with the given id
func (p *PaymentPlan) Installment(id uuid.UUID) (*PaymentPlanInstallment, error) {
	for i := range p.Installments {
		if p.Installments[i].ID == id {
			return &p.Installments[i], nil
		}
	}
	return nil, shared.NewNotFoundError("Installment")
}

// PayableInstallment returns the installment if it can be paid right now
func (p *PaymentPlan) PayableInstallment(id uuid.UUID) (*PaymentPlanInstallment, error) {
	if p.Status != PlanStatusActive {
		return nil, shared.NewInvalidStateError("PLAN_NOT_ACTIVE",
			fmt.Sprintf("Cannot pay an installment of a plan in %s status", p.Status))
	}
	inst, err := p.Installment(id)
	if err != nil {
		return nil, err
	}
	if inst.Status != InstallmentStatusPending {
		return nil, shared.NewInvalidStateError("INSTALLMENT_NOT_PENDING",
			fmt.Sprintf("Installment %d is %s", inst.Number, inst.Status))
	}
	return inst, nil
}

// PayInstallment links the settling payment and marks the installment Paid. The plan
// becomes Completed once every non-cancelled installment is paid.
func (p *PaymentPlan) PayInstallment(installmentID, paymentID uuid.UUID, now time.Time) error {
	inst, err := p.PayableInstallment(installmentID)
	if err != nil {
		return err
	}

	at := now.UTC()
	pid := paymentID
	inst.Status = InstallmentStatusPaid
	inst.PaymentID = &pid
	inst.PaidAt = &at
	inst.UpdatedAt = at

	if p.allSettled() {
		p.Status = PlanStatusCompleted
		p.CompletedAt = &at
		p.AddDomainEvent(NewPaymentPlanStatusEvent(p, EventPaymentPlanCompleted))
	}

	p.Touch()
	p.IncrementVersion()
	return nil
}

// ReopenInstallment undoes the settlement made by paymentID after that payment
// was cancelled. The installment goes back to Pending (Cancelled on a cancelled
// plan) and a Completed plan becomes Active again. Returns false when no paid
// installment references the payment.
func (p *PaymentPlan) ReopenInstallment(paymentID uuid.UUID, now time.Time) bool {
	var inst *PaymentPlanInstallment
	for i := range p.Installments {
		it := &p.Installments[i]
		if it.Status == InstallmentStatusPaid && it.PaymentID != nil && *it.PaymentID == paymentID {
			inst = it
			break
		}
	}
	if inst == nil {
		return false
	}

	at := now.UTC()
	inst.Status = InstallmentStatusPending
	if p.Status == PlanStatusCancelled {
		inst.Status = InstallmentStatusCancelled
	}
	inst.PaymentID = nil
	inst.PaidAt = nil
	inst.UpdatedAt = at

	if p.Status == PlanStatusCompleted {
		p.Status = PlanStatusActive
		p.CompletedAt = nil
		p.AddDomainEvent(NewPaymentPlanStatusEvent(p, EventPaymentPlanReopened))
	}

	p.Touch()
	p.IncrementVersion()
	return true
}

func (p *PaymentPlan) allSettled() bool {
	for i := range p.Installments {
		if p.Installments[i].Status == InstallmentStatusPending {
			return false
		}
	}
	return true
}

// HasPaidInstallment reports whether any installment is Paid
func (p *PaymentPlan) HasPaidInstallment() bool {
	for i := range p.Installments {
		if p.Installments[i].Status == InstallmentStatusPaid {
			return true
		}
	}
	return false
}

// PaidAmount sums the paid installments
func (p *PaymentPlan) PaidAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range p.Installments {
		if p.Installments[i].Status == InstallmentStatusPaid {
			total = total.Add(p.Installments[i].Amount)
		}
	}
	return total
}

// NextPendingInstallment returns the earliest pending installment, or nil
func (p *PaymentPlan) NextPendingInstallment() *PaymentPlanInstallment {
	for i := range p.Installments {
		if p.Installments[i].Status == InstallmentStatusPending {
			return &p.Installments[i]
		}
	}
	return nil
}
