package finance

import (
	"time"

	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type names
const (
	AggregateTypeReceivable  = "AccountReceivable"
	AggregateTypePayment     = "Payment"
	AggregateTypePaymentPlan = "PaymentPlan"
	AggregateTypeInvoice     = "Invoice"
)

// Event type names
const (
	EventReceivableCreated       = "ReceivableCreated"
	EventReceivableStatusChanged = "ReceivableStatusChanged"

	EventPaymentRegistered = "PaymentRegistered"
	EventPaymentConfirmed  = "PaymentConfirmed"
	EventPaymentRejected   = "PaymentRejected"
	EventPaymentCancelled  = "PaymentCancelled"

	EventPaymentPlanCreated     = "PaymentPlanCreated"
	EventPaymentPlanRegenerated = "PaymentPlanRegenerated"
	EventPaymentPlanSuspended   = "PaymentPlanSuspended"
	EventPaymentPlanReactivated = "PaymentPlanReactivated"
	EventPaymentPlanCancelled   = "PaymentPlanCancelled"
	EventPaymentPlanCompleted   = "PaymentPlanCompleted"
	EventPaymentPlanReopened    = "PaymentPlanReopened"

	EventInvoiceIssued    = "InvoiceIssued"
	EventInvoicePaid      = "InvoicePaid"
	EventInvoiceOverdue   = "InvoiceOverdue"
	EventInvoiceCancelled = "InvoiceCancelled"
)

// ReceivableCreatedEvent is raised when a receivable is created
type ReceivableCreatedEvent struct {
	shared.BaseDomainEvent
	StudentID uuid.UUID       `json:"student_id"`
	ConceptID uuid.UUID       `json:"concept_id"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *ReceivableCreatedEvent) EventType() string {
	return EventReceivableCreated
}

// NewReceivableCreatedEvent creates a new ReceivableCreatedEvent
func NewReceivableCreatedEvent(ar *AccountReceivable) *ReceivableCreatedEvent {
	return &ReceivableCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventReceivableCreated, AggregateTypeReceivable, ar.ID, ar.TenantID),
		StudentID:       ar.StudentID,
		ConceptID:       ar.ConceptID,
		Amount:          ar.Amount,
		DueDate:         ar.DueDate,
	}
}

// ReceivableStatusChangedEvent is raised when a recompute moves the receivable status
type ReceivableStatusChangedEvent struct {
	shared.BaseDomainEvent
	StudentID       uuid.UUID        `json:"student_id"`
	FromStatus      ReceivableStatus `json:"from_status"`
	ToStatus        ReceivableStatus `json:"to_status"`
	PaidAmount      decimal.Decimal  `json:"paid_amount"`
	RemainingAmount decimal.Decimal  `json:"remaining_amount"`
}

// EventType returns the event type name
func (e *ReceivableStatusChangedEvent) EventType() string {
	return EventReceivableStatusChanged
}

// NewReceivableStatusChangedEvent creates a new ReceivableStatusChangedEvent
func NewReceivableStatusChangedEvent(ar *AccountReceivable, from ReceivableStatus) *ReceivableStatusChangedEvent {
	return &ReceivableStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventReceivableStatusChanged, AggregateTypeReceivable, ar.ID, ar.TenantID),
		StudentID:       ar.StudentID,
		FromStatus:      from,
		ToStatus:        ar.Status,
		PaidAmount:      ar.PaidAmount,
		RemainingAmount: ar.RemainingAmount,
	}
}

// PaymentEvent carries a payment snapshot; its type distinguishes registered,
// confirmed, rejected and cancelled.
type PaymentEvent struct {
	shared.BaseDomainEvent
	ReceivableID   uuid.UUID       `json:"receivable_id"`
	StudentID      uuid.UUID       `json:"student_id"`
	Amount         decimal.Decimal `json:"amount"`
	Method         PaymentMethod   `json:"method"`
	Reference      string          `json:"reference"`
	Status         PaymentStatus   `json:"status"`
	PreviousStatus PaymentStatus   `json:"previous_status,omitempty"`
	Reason         string          `json:"reason,omitempty"`
}

func newPaymentEvent(eventType string, p *Payment) *PaymentEvent {
	return &PaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypePayment, p.ID, p.TenantID),
		ReceivableID:    p.ReceivableID,
		StudentID:       p.StudentID,
		Amount:          p.Amount,
		Method:          p.Method,
		Reference:       p.ReferenceNumber,
		Status:          p.Status,
	}
}

// NewPaymentRegisteredEvent creates the event for a new Pending payment
func NewPaymentRegisteredEvent(p *Payment) *PaymentEvent {
	return newPaymentEvent(EventPaymentRegistered, p)
}

// NewPaymentConfirmedEvent creates the event for a confirmed payment
func NewPaymentConfirmedEvent(p *Payment) *PaymentEvent {
	e := newPaymentEvent(EventPaymentConfirmed, p)
	e.PreviousStatus = PaymentStatusPending
	return e
}

// NewPaymentRejectedEvent creates the event for a rejected payment
func NewPaymentRejectedEvent(p *Payment) *PaymentEvent {
	e := newPaymentEvent(EventPaymentRejected, p)
	e.PreviousStatus = PaymentStatusPending
	e.Reason = p.RejectionReason
	return e
}

// NewPaymentCancelledEvent creates the event for a cancelled payment
func NewPaymentCancelledEvent(p *Payment, previous PaymentStatus) *PaymentEvent {
	e := newPaymentEvent(EventPaymentCancelled, p)
	e.PreviousStatus = previous
	e.Reason = p.CancelReason
	return e
}

// PaymentPlanEvent carries a plan snapshot for lifecycle events
type PaymentPlanEvent struct {
	shared.BaseDomainEvent
	StudentID        uuid.UUID       `json:"student_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	InstallmentCount int             `json:"installment_count"`
	Frequency        PlanFrequency   `json:"frequency"`
	Status           PlanStatus      `json:"status"`
}

// NewPaymentPlanStatusEvent creates a plan event of the given type
func NewPaymentPlanStatusEvent(p *PaymentPlan, eventType string) *PaymentPlanEvent {
	return &PaymentPlanEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(eventType, AggregateTypePaymentPlan, p.ID, p.TenantID),
		StudentID:        p.StudentID,
		TotalAmount:      p.TotalAmount,
		InstallmentCount: p.InstallmentCount,
		Frequency:        p.Frequency,
		Status:           p.Status,
	}
}

// NewPaymentPlanCreatedEvent creates the event for a new plan
func NewPaymentPlanCreatedEvent(p *PaymentPlan) *PaymentPlanEvent {
	return NewPaymentPlanStatusEvent(p, EventPaymentPlanCreated)
}

// NewPaymentPlanRegeneratedEvent creates the event for a rebuilt schedule
func NewPaymentPlanRegeneratedEvent(p *PaymentPlan) *PaymentPlanEvent {
	return NewPaymentPlanStatusEvent(p, EventPaymentPlanRegenerated)
}

// InvoiceEvent is raised on every invoice status change
type InvoiceEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	StudentID     uuid.UUID       `json:"student_id"`
	Period        BillingPeriod   `json:"period"`
	Total         decimal.Decimal `json:"total"`
	DueDate       time.Time       `json:"due_date"`
	FromStatus    InvoiceStatus   `json:"from_status"`
	ToStatus      InvoiceStatus   `json:"to_status"`
}

var invoiceEventTypes = map[InvoiceStatus]string{
	InvoiceStatusPending:   EventInvoiceIssued,
	InvoiceStatusPaid:      EventInvoicePaid,
	InvoiceStatusOverdue:   EventInvoiceOverdue,
	InvoiceStatusCancelled: EventInvoiceCancelled,
}

// NewInvoiceStatusChangedEvent creates the event matching the invoice's new status
func NewInvoiceStatusChangedEvent(inv *Invoice, from InvoiceStatus) *InvoiceEvent {
	return &InvoiceEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(invoiceEventTypes[inv.Status], AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceNumber:   inv.InvoiceNumber,
		StudentID:       inv.StudentID,
		Period:          inv.Period,
		Total:           inv.Total,
		DueDate:         inv.DueDate,
		FromStatus:      from,
		ToStatus:        inv.Status,
	}
}
