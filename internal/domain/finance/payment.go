package finance

import (
	"fmt"
	"time"

	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how the money was handed over
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
)

// AllPaymentMethods returns the methods in display order
func AllPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentMethodCash,
		PaymentMethodBankTransfer,
		PaymentMethodCard,
		PaymentMethodMobileMoney,
		PaymentMethodCheque,
	}
}

// IsValid checks if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard,
		PaymentMethodMobileMoney, PaymentMethodCheque:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusRejected  PaymentStatus = "REJECTED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusConfirmed, PaymentStatusRejected, PaymentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsActive returns true for payments that reserve or settle part of a receivable
func (s PaymentStatus) IsActive() bool {
	return s == PaymentStatusPending || s == PaymentStatusConfirmed
}

const maxReferenceLength = 100

// Payment is money applied (or about to be applied) to one receivable.
// Only Confirmed payments reduce the receivable's remaining amount.
type Payment struct {
	shared.TenantAggregateRoot
	ReceivableID    uuid.UUID       `json:"receivable_id"`
	StudentID       uuid.UUID       `json:"student_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	Method          PaymentMethod   `json:"method"`
	ReferenceNumber string          `json:"reference_number"`
	VoucherRef      string          `json:"voucher_ref"`
	Status          PaymentStatus   `json:"status"`
	ConfirmedAt     *time.Time      `json:"confirmed_at"`
	ConfirmedBy     *uuid.UUID      `json:"confirmed_by"`
	RejectedAt      *time.Time      `json:"rejected_at"`
	RejectionReason string          `json:"rejection_reason"`
	CancelledAt     *time.Time      `json:"cancelled_at"`
	CancelReason    string          `json:"cancel_reason"`
}

// NewPayment creates a Pending payment against the receivable. The balance check is
// done by AccountReceivable.AcceptPayment under the receivable lock.
func NewPayment(
	scope shared.TenantScope,
	receivable *AccountReceivable,
	amount decimal.Decimal,
	paymentDate time.Time,
	method PaymentMethod,
	reference string,
	today time.Time,
) (*Payment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if receivable == nil || !receivable.BelongsTo(scope) {
		return nil, shared.NewNotFoundError("Receivable")
	}
	if err := validatePositiveAmount("Payment amount", amount); err != nil {
		return nil, err
	}
	if paymentDate.IsZero() {
		paymentDate = today
	}
	if err := validatePaymentFields(paymentDate, method, reference, today); err != nil {
		return nil, err
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		ReceivableID:        receivable.ID,
		StudentID:           receivable.StudentID,
		Amount:              amount,
		PaymentDate:         DateOnly(paymentDate),
		Method:              method,
		ReferenceNumber:     reference,
		Status:              PaymentStatusPending,
	}

	p.AddDomainEvent(NewPaymentRegisteredEvent(p))

	return p, nil
}

func validatePaymentFields(paymentDate time.Time, method PaymentMethod, reference string, today time.Time) error {
	if DateOnly(paymentDate).After(DateOnly(today)) {
		return shared.NewValidationError("PAYMENT_DATE_IN_FUTURE", "Payment date cannot be in the future")
	}
	if !method.IsValid() {
		return shared.NewValidationError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %q", method))
	}
	if len(reference) > maxReferenceLength {
		return shared.NewValidationError("INVALID_REFERENCE", "Reference number cannot exceed 100 characters")
	}
	return nil
}

// PaymentUpdate carries the optional fields of a payment edit
type PaymentUpdate struct {
	Amount          *decimal.Decimal
	PaymentDate     *time.Time
	Method          *PaymentMethod
	ReferenceNumber *string
}

// Update edits a Pending payment. A changed amount must be re-checked against the
// receivable by the caller before saving.
func (p *Payment) Update(upd PaymentUpdate, today time.Time) error {
	if p.Status != PaymentStatusPending {
		return shared.NewInvalidStateError("PAYMENT_NOT_PENDING",
			fmt.Sprintf("Cannot edit payment in %s status", p.Status))
	}

	amount, date, method, reference := p.Amount, p.PaymentDate, p.Method, p.ReferenceNumber
	if upd.Amount != nil {
		if err := validatePositiveAmount("Payment amount", *upd.Amount); err != nil {
			return err
		}
		amount = *upd.Amount
	}
	if upd.PaymentDate != nil {
		date = *upd.PaymentDate
	}
	if upd.Method != nil {
		method = *upd.Method
	}
	if upd.ReferenceNumber != nil {
		reference = *upd.ReferenceNumber
	}
	if err := validatePaymentFields(date, method, reference, today); err != nil {
		return err
	}

	p.Amount = amount
	p.PaymentDate = DateOnly(date)
	p.Method = method
	p.ReferenceNumber = reference
	p.Touch()
	p.IncrementVersion()
	return nil
}

// Confirm moves a Pending payment to Confirmed
func (p *Payment) Confirm(actor *uuid.UUID, now time.Time) error {
	if p.Status != PaymentStatusPending {
		return shared.NewInvalidStateError("PAYMENT_NOT_PENDING",
			fmt.Sprintf("Cannot confirm payment in %s status", p.Status))
	}

	at := now.UTC()
	p.Status = PaymentStatusConfirmed
	p.ConfirmedAt = &at
	p.ConfirmedBy = actor
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentConfirmedEvent(p))
	return nil
}

// Reject moves a Pending payment to Rejected
func (p *Payment) Reject(reason string, now time.Time) error {
	if p.Status != PaymentStatusPending {
		return shared.NewInvalidStateError("PAYMENT_NOT_PENDING",
			fmt.Sprintf("Cannot reject payment in %s status", p.Status))
	}

	at := now.UTC()
	p.Status = PaymentStatusRejected
	p.RejectedAt = &at
	p.RejectionReason = reason
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentRejectedEvent(p))
	return nil
}

// Cancel moves any non-cancelled payment to Cancelled. Cancelling a Confirmed payment
// is a reversal: the receivable must be recomputed in the same transaction.
func (p *Payment) Cancel(reason string, now time.Time) error {
	if p.Status == PaymentStatusCancelled {
		return shared.NewInvalidStateError("PAYMENT_ALREADY_CANCELLED", "Payment is already cancelled")
	}

	previous := p.Status
	at := now.UTC()
	p.Status = PaymentStatusCancelled
	p.CancelledAt = &at
	p.CancelReason = reason
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentCancelledEvent(p, previous))
	return nil
}

// AttachVoucher records the storage reference of an uploaded voucher
func (p *Payment) AttachVoucher(ref string) error {
	if !p.Status.IsActive() {
		return shared.NewInvalidStateError("PAYMENT_NOT_ACTIVE",
			fmt.Sprintf("Cannot attach a voucher to payment in %s status", p.Status))
	}
	if ref == "" {
		return shared.NewValidationError("INVALID_VOUCHER", "Voucher reference cannot be empty")
	}

	p.VoucherRef = ref
	p.Touch()
	p.IncrementVersion()
	return nil
}

// SumPayments totals the amounts of payments in any of the given statuses
func SumPayments(payments []Payment, statuses ...PaymentStatus) decimal.Decimal {
	total := decimal.Zero
	for i := range payments {
		for _, s := range statuses {
			if payments[i].Status == s {
				total = total.Add(payments[i].Amount)
				break
			}
		}
	}
	return total
}

// HasActivePayments reports whether any payment is Pending or Confirmed
func HasActivePayments(payments []Payment) bool {
	for i := range payments {
		if payments[i].Status.IsActive() {
			return true
		}
	}
	return false
}
