package finance

import (
	"fmt"
	"time"

	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceivableStatus represents the settlement status of an account receivable
type ReceivableStatus string

const (
	ReceivableStatusPending ReceivableStatus = "PENDING" // Nothing confirmed yet
	ReceivableStatusPartial ReceivableStatus = "PARTIAL" // 0 < remaining < amount
	ReceivableStatusPaid    ReceivableStatus = "PAID"    // remaining == 0
)

// IsValid checks if the status is a valid ReceivableStatus
func (s ReceivableStatus) IsValid() bool {
	switch s {
	case ReceivableStatusPending, ReceivableStatusPartial, ReceivableStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of ReceivableStatus
func (s ReceivableStatus) String() string {
	return string(s)
}

// IsOutstanding returns true while money is still owed
func (s ReceivableStatus) IsOutstanding() bool {
	return s == ReceivableStatusPending || s == ReceivableStatusPartial
}

// DeriveReceivableStatus computes the status from the original amount and what is left
func DeriveReceivableStatus(amount, remaining decimal.Decimal) ReceivableStatus {
	switch {
	case remaining.LessThanOrEqual(decimal.Zero):
		return ReceivableStatusPaid
	case remaining.GreaterThanOrEqual(amount):
		return ReceivableStatusPending
	default:
		return ReceivableStatusPartial
	}
}

const maxDescriptionLength = 500

// AccountReceivable is an amount a student owes for one fee concept.
// PaidAmount and RemainingAmount are cached from the confirmed payments and are only
// ever written by Recompute.
type AccountReceivable struct {
	shared.TenantAggregateRoot
	StudentID       uuid.UUID        `json:"student_id"`
	ConceptID       uuid.UUID        `json:"concept_id"`
	Amount          decimal.Decimal  `json:"amount"`
	PaidAmount      decimal.Decimal  `json:"paid_amount"`
	RemainingAmount decimal.Decimal  `json:"remaining_amount"`
	DueDate         time.Time        `json:"due_date"`
	Description     string           `json:"description"`
	Status          ReceivableStatus `json:"status"`
	PaidAt          *time.Time       `json:"paid_at"`
}

// NewAccountReceivable creates a Pending receivable. The due date may not be before today.
func NewAccountReceivable(
	scope shared.TenantScope,
	studentID uuid.UUID,
	conceptID uuid.UUID,
	amount decimal.Decimal,
	dueDate time.Time,
	description string,
	today time.Time,
) (*AccountReceivable, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if studentID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if conceptID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CONCEPT", "Concept ID cannot be empty")
	}
	if err := validatePositiveAmount("Amount", amount); err != nil {
		return nil, err
	}
	if err := validateDueDate(dueDate, today); err != nil {
		return nil, err
	}
	if len(description) > maxDescriptionLength {
		return nil, shared.NewValidationError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}

	ar := &AccountReceivable{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		StudentID:           studentID,
		ConceptID:           conceptID,
		Amount:              amount,
		PaidAmount:          decimal.Zero,
		RemainingAmount:     amount,
		DueDate:             DateOnly(dueDate),
		Description:         description,
		Status:              ReceivableStatusPending,
	}

	ar.AddDomainEvent(NewReceivableCreatedEvent(ar))

	return ar, nil
}

func validateDueDate(dueDate, today time.Time) error {
	if dueDate.IsZero() {
		return shared.NewValidationError("INVALID_DUE_DATE", "Due date is required")
	}
	if DateOnly(dueDate).Before(DateOnly(today)) {
		return shared.NewValidationError("DUE_DATE_IN_PAST", "Due date cannot be in the past")
	}
	return nil
}

// ReceivableUpdate carries the optional fields of a receivable edit
type ReceivableUpdate struct {
	Amount      *decimal.Decimal
	DueDate     *time.Time
	Description *string
}

// Update edits an outstanding receivable. hasActivePayments reports whether any
// Pending or Confirmed payment exists, which freezes the amount.
func (ar *AccountReceivable) Update(upd ReceivableUpdate, hasActivePayments bool, today time.Time) error {
	if !ar.Status.IsOutstanding() {
		return shared.NewInvalidStateError("RECEIVABLE_NOT_EDITABLE",
			fmt.Sprintf("Cannot edit receivable in %s status", ar.Status))
	}

	if upd.Amount != nil && !upd.Amount.Equal(ar.Amount) {
		if hasActivePayments {
			return shared.NewConflictError("AMOUNT_LOCKED",
				"Amount cannot change while the receivable has pending or confirmed payments")
		}
		if err := validatePositiveAmount("Amount", *upd.Amount); err != nil {
			return err
		}
	}
	if upd.DueDate != nil {
		if err := validateDueDate(*upd.DueDate, today); err != nil {
			return err
		}
	}
	if upd.Description != nil && len(*upd.Description) > maxDescriptionLength {
		return shared.NewValidationError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}

	if upd.Amount != nil {
		ar.Amount = *upd.Amount
		ar.RemainingAmount = ar.Amount.Sub(ar.PaidAmount)
		ar.Status = DeriveReceivableStatus(ar.Amount, ar.RemainingAmount)
	}
	if upd.DueDate != nil {
		ar.DueDate = DateOnly(*upd.DueDate)
	}
	if upd.Description != nil {
		ar.Description = *upd.Description
	}

	ar.Touch()
	ar.IncrementVersion()
	return nil
}

// AcceptPayment checks that a new payment fits in the balance not yet covered by
// confirmed or pending payments. It bumps the version so the caller's locked save
// detects a concurrent registration.
func (ar *AccountReceivable) AcceptPayment(amount, pendingTotal decimal.Decimal) error {
	if ar.Status == ReceivableStatusPaid {
		return shared.NewConflictError("RECEIVABLE_ALREADY_PAID", "Receivable is already fully paid")
	}
	if err := validatePositiveAmount("Payment amount", amount); err != nil {
		return err
	}
	available := ar.AvailableForPayment(pendingTotal)
	if amount.GreaterThan(available) {
		return shared.NewValidationError("AMOUNT_EXCEEDS_REMAINING",
			fmt.Sprintf("Payment amount %s exceeds remaining balance %s", amount.StringFixed(MoneyScale), available.StringFixed(MoneyScale)))
	}

	ar.Touch()
	ar.IncrementVersion()
	return nil
}

// AvailableForPayment returns the remaining balance minus pending payments, never below zero
func (ar *AccountReceivable) AvailableForPayment(pendingTotal decimal.Decimal) decimal.Decimal {
	available := ar.RemainingAmount.Sub(pendingTotal)
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

// Recompute sets paid/remaining/status from the confirmed total. It returns whether
// anything changed; calling it twice with the same total is a no-op the second time.
func (ar *AccountReceivable) Recompute(confirmedTotal decimal.Decimal, now time.Time) (bool, error) {
	if confirmedTotal.IsNegative() || confirmedTotal.GreaterThan(ar.Amount) {
		return false, shared.NewConflictError("SETTLEMENT_EXCEEDS_AMOUNT",
			fmt.Sprintf("Confirmed payments %s exceed receivable amount %s",
				confirmedTotal.StringFixed(MoneyScale), ar.Amount.StringFixed(MoneyScale)))
	}

	remaining := ar.Amount.Sub(confirmedTotal)
	status := DeriveReceivableStatus(ar.Amount, remaining)
	if ar.PaidAmount.Equal(confirmedTotal) && ar.RemainingAmount.Equal(remaining) && ar.Status == status {
		return false, nil
	}

	previous := ar.Status
	ar.PaidAmount = confirmedTotal
	ar.RemainingAmount = remaining
	ar.Status = status

	if status == ReceivableStatusPaid {
		paidAt := now.UTC()
		ar.PaidAt = &paidAt
	} else {
		ar.PaidAt = nil
	}

	if previous != status {
		ar.AddDomainEvent(NewReceivableStatusChangedEvent(ar, previous))
	}

	ar.Touch()
	ar.IncrementVersion()
	return true, nil
}

// IsOverdue is derived, never stored: outstanding and past its due date
func (ar *AccountReceivable) IsOverdue(today time.Time) bool {
	return ar.Status.IsOutstanding() && ar.DueDate.Before(DateOnly(today))
}

// DaysOverdue returns max(0, today - due date)
func (ar *AccountReceivable) DaysOverdue(today time.Time) int {
	days := DaysBetween(ar.DueDate, today)
	if days < 0 {
		return 0
	}
	return days
}

// PaidPercentage returns the settled share of the amount as 0-100 with two decimals
func (ar *AccountReceivable) PaidPercentage() decimal.Decimal {
	if ar.Amount.IsZero() {
		return decimal.Zero
	}
	return ar.PaidAmount.Div(ar.Amount).Mul(decimal.NewFromInt(100)).Round(2)
}

// CanDelete returns an error unless the receivable has no payments of any status
func (ar *AccountReceivable) CanDelete(paymentCount int64) error {
	if paymentCount > 0 {
		return shared.NewConflictError("RECEIVABLE_HAS_PAYMENTS",
			fmt.Sprintf("Cannot delete receivable with %d payment(s)", paymentCount))
	}
	return nil
}
