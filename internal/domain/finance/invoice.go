package finance

import (
	"fmt"
	"time"

	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice. Overdue is stored, unlike
// receivables where it is derived.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusPending, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is possible
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// invoiceTransitions lists every legal status change
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:   {InvoiceStatusPending},
	InvoiceStatusPending: {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusOverdue: {InvoiceStatusCancelled},
}

// CanTransition reports whether from -> to is in the transition table
func CanTransition(from, to InvoiceStatus) bool {
	for _, next := range invoiceTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// BillableItem is one fee line supplied by the fee catalog
type BillableItem struct {
	ConceptID   uuid.UUID
	Description string
	UnitPrice   decimal.Decimal
	Quantity    decimal.Decimal
	Discount    decimal.Decimal
	Tax         decimal.Decimal
	Snapshot    map[string]any
}

// InvoiceItem is a line of an invoice
type InvoiceItem struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	ConceptID   uuid.UUID       `json:"concept_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Discount    decimal.Decimal `json:"discount"`
	Tax         decimal.Decimal `json:"tax"`
	Snapshot    map[string]any  `json:"snapshot,omitempty"`
}

func newInvoiceItem(invoiceID uuid.UUID, item BillableItem) (InvoiceItem, error) {
	if item.ConceptID == uuid.Nil {
		return InvoiceItem{}, shared.NewValidationError("INVALID_CONCEPT", "Invoice item concept cannot be empty")
	}
	if !item.Quantity.IsPositive() {
		return InvoiceItem{}, shared.NewValidationError("INVALID_QUANTITY", "Invoice item quantity must be greater than zero")
	}
	if item.UnitPrice.IsNegative() {
		return InvoiceItem{}, shared.NewValidationError("INVALID_UNIT_PRICE", "Invoice item unit price cannot be negative")
	}
	if item.Discount.IsNegative() || item.Tax.IsNegative() {
		return InvoiceItem{}, shared.NewValidationError("INVALID_ADJUSTMENT", "Invoice item discount and tax cannot be negative")
	}

	lineTotal := RoundMoney(item.Quantity.Mul(item.UnitPrice))
	if item.Discount.GreaterThan(lineTotal) {
		return InvoiceItem{}, shared.NewValidationError("INVALID_ADJUSTMENT", "Invoice item discount cannot exceed its line total")
	}

	return InvoiceItem{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		ConceptID:   item.ConceptID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		LineTotal:   lineTotal,
		Discount:    RoundMoney(item.Discount),
		Tax:         RoundMoney(item.Tax),
		Snapshot:    item.Snapshot,
	}, nil
}

// Invoice bills a student for one billing period
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber    string          `json:"invoice_number"`
	StudentID        uuid.UUID       `json:"student_id"`
	Period           BillingPeriod   `json:"period"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Discount         decimal.Decimal `json:"discount"`
	Tax              decimal.Decimal `json:"tax"`
	Total            decimal.Decimal `json:"total"`
	DueDate          time.Time       `json:"due_date"`
	Status           InvoiceStatus   `json:"status"`
	IssuedAt         *time.Time      `json:"issued_at"`
	PaidAt           *time.Time      `json:"paid_at"`
	OverdueAt        *time.Time      `json:"overdue_at"`
	CancelledAt      *time.Time      `json:"cancelled_at"`
	PaymentReference string          `json:"payment_reference"`
	CancelReason     string          `json:"cancel_reason"`
	Notes            string          `json:"notes"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
	Items            []InvoiceItem   `json:"items"`
}

// NewInvoice creates an empty Draft invoice
func NewInvoice(
	scope shared.TenantScope,
	studentID uuid.UUID,
	period BillingPeriod,
	invoiceNumber string,
	dueDate time.Time,
) (*Invoice, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if studentID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_STUDENT", "Student ID cannot be empty")
	}
	if _, err := ParseBillingPeriod(string(period)); err != nil {
		return nil, err
	}
	if invoiceNumber == "" {
		return nil, shared.NewValidationError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if dueDate.IsZero() {
		return nil, shared.NewValidationError("INVALID_DUE_DATE", "Due date is required")
	}

	return &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(scope),
		InvoiceNumber:       invoiceNumber,
		StudentID:           studentID,
		Period:              period,
		Subtotal:            decimal.Zero,
		Discount:            decimal.Zero,
		Tax:                 decimal.Zero,
		Total:               decimal.Zero,
		DueDate:             DateOnly(dueDate),
		Status:              InvoiceStatusDraft,
		Metadata:            map[string]any{},
	}, nil
}

// ReplaceItems rebuilds the lines of a Draft or Pending invoice and recalculates totals.
// Regenerating an invoice for the same period goes through here instead of creating a
// second invoice. The invoice is left untouched when any item is rejected.
func (inv *Invoice) ReplaceItems(items []BillableItem) error {
	if inv.Status != InvoiceStatusDraft && inv.Status != InvoiceStatusPending {
		return shared.NewInvalidStateError("INVOICE_NOT_REGENERABLE",
			fmt.Sprintf("Cannot change items of invoice in %s status", inv.Status))
	}
	if len(items) == 0 {
		return shared.NewInvalidStateError("INVOICE_HAS_NO_ITEMS", "An invoice must keep at least one item")
	}

	lines := make([]InvoiceItem, 0, len(items))
	for _, item := range items {
		line, err := newInvoiceItem(inv.ID, item)
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}
	totals, err := sumInvoiceItems(lines)
	if err != nil {
		return err
	}

	inv.Items = lines
	inv.applyTotals(totals)
	inv.Touch()
	inv.IncrementVersion()
	return nil
}

type invoiceTotals struct {
	subtotal, discount, tax, total decimal.Decimal
}

func sumInvoiceItems(items []InvoiceItem) (invoiceTotals, error) {
	t := invoiceTotals{subtotal: decimal.Zero, discount: decimal.Zero, tax: decimal.Zero}
	for i := range items {
		t.subtotal = t.subtotal.Add(items[i].LineTotal)
		t.discount = t.discount.Add(items[i].Discount)
		t.tax = t.tax.Add(items[i].Tax)
	}
	t.total = t.subtotal.Sub(t.discount).Add(t.tax)
	if t.total.IsNegative() {
		return invoiceTotals{}, shared.NewValidationError("INVALID_TOTAL", "Invoice total cannot be negative")
	}
	return t, nil
}

func (inv *Invoice) applyTotals(t invoiceTotals) {
	inv.Subtotal = t.subtotal
	inv.Discount = t.discount
	inv.Tax = t.tax
	inv.Total = t.total
}

// Recalculate derives subtotal, discount, tax and total from the items.
// Totals are only written when they are valid.
func (inv *Invoice) Recalculate() error {
	totals, err := sumInvoiceItems(inv.Items)
	if err != nil {
		return err
	}
	inv.applyTotals(totals)
	return nil
}

// transition is the only place an invoice status is written
func (inv *Invoice) transition(to InvoiceStatus, today, now time.Time) error {
	from := inv.Status
	if !CanTransition(from, to) {
		return shared.NewInvalidStateError("INVALID_INVOICE_TRANSITION",
			fmt.Sprintf("Cannot move invoice from %s to %s", from, to))
	}

	switch to {
	case InvoiceStatusPending:
		if len(inv.Items) == 0 {
			return shared.NewInvalidStateError("INVOICE_HAS_NO_ITEMS", "Cannot issue an invoice without items")
		}
		if err := inv.Recalculate(); err != nil {
			return err
		}
	case InvoiceStatusOverdue:
		if !inv.DueDate.Before(DateOnly(today)) {
			return shared.NewInvalidStateError("INVOICE_NOT_DUE", "Invoice is not past its due date")
		}
	}

	at := now.UTC()
	inv.Status = to
	switch to {
	case InvoiceStatusPending:
		inv.IssuedAt = &at
	case InvoiceStatusPaid:
		inv.PaidAt = &at
	case InvoiceStatusOverdue:
		inv.OverdueAt = &at
	case InvoiceStatusCancelled:
		inv.CancelledAt = &at
	}

	inv.Touch()
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceStatusChangedEvent(inv, from))
	return nil
}

// Issue moves a Draft invoice to Pending
func (inv *Invoice) Issue(now time.Time) error {
	return inv.transition(InvoiceStatusPending, now, now)
}

// MarkAsPaid moves a Pending invoice to Paid
func (inv *Invoice) MarkAsPaid(reference string, now time.Time) error {
	if err := inv.transition(InvoiceStatusPaid, now, now); err != nil {
		return err
	}
	inv.PaymentReference = reference
	return nil
}

// MarkOverdue moves a Pending invoice past its due date to Overdue
func (inv *Invoice) MarkOverdue(today, now time.Time) error {
	return inv.transition(InvoiceStatusOverdue, today, now)
}

// Cancel moves a Pending or Overdue invoice to Cancelled
func (inv *Invoice) Cancel(reason string, now time.Time) error {
	if err := inv.transition(InvoiceStatusCancelled, now, now); err != nil {
		return err
	}
	inv.CancelReason = reason
	return nil
}

// CanDelete returns an error for paid invoices
func (inv *Invoice) CanDelete() error {
	if inv.Status == InvoiceStatusPaid {
		return shared.NewConflictError("INVOICE_PAID", "Cannot delete a paid invoice")
	}
	return nil
}

// FormatInvoiceNumber renders INV-YYYYMM-NNNNN
func FormatInvoiceNumber(period BillingPeriod, sequence int) string {
	return fmt.Sprintf("INV-%s-%05d", period.Compact(), sequence)
}

// InvoiceNumberPrefix is the LIKE prefix shared by all invoice numbers of a period
func InvoiceNumberPrefix(period BillingPeriod) string {
	return fmt.Sprintf("INV-%s-", period.Compact())
}
