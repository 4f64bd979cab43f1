package finance

import (
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ===================== Receivable DTOs =====================

// CreateReceivableInput is the input for creating a receivable
type CreateReceivableInput struct {
	StudentID   uuid.UUID
	ConceptID   uuid.UUID
	Amount      decimal.Decimal
	DueDate     time.Time
	Description string
}

// ReceivableResponse is a receivable with its derived settlement figures
type ReceivableResponse struct {
	ID              uuid.UUID                `json:"id"`
	TenantID        uuid.UUID                `json:"tenant_id"`
	StudentID       uuid.UUID                `json:"student_id"`
	ConceptID       uuid.UUID                `json:"concept_id"`
	Amount          decimal.Decimal          `json:"amount"`
	PaidAmount      decimal.Decimal          `json:"paid_amount"`
	RemainingAmount decimal.Decimal          `json:"remaining_amount"`
	PaidPercentage  decimal.Decimal          `json:"paid_percentage"`
	DueDate         time.Time                `json:"due_date"`
	IsOverdue       bool                     `json:"is_overdue"`
	DaysOverdue     int                      `json:"days_overdue"`
	Description     string                   `json:"description"`
	Status          finance.ReceivableStatus `json:"status"`
	PaidAt          *time.Time               `json:"paid_at,omitempty"`
	CreatedBy       *uuid.UUID               `json:"created_by,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
	Version         int                      `json:"version"`
}

// ToReceivableResponse maps a receivable, deriving overdue figures against today
func ToReceivableResponse(ar *finance.AccountReceivable, today time.Time) ReceivableResponse {
	return ReceivableResponse{
		ID:              ar.ID,
		TenantID:        ar.TenantID,
		StudentID:       ar.StudentID,
		ConceptID:       ar.ConceptID,
		Amount:          ar.Amount,
		PaidAmount:      ar.PaidAmount,
		RemainingAmount: ar.RemainingAmount,
		PaidPercentage:  ar.PaidPercentage(),
		DueDate:         ar.DueDate,
		IsOverdue:       ar.IsOverdue(today),
		DaysOverdue:     overdueDays(ar, today),
		Description:     ar.Description,
		Status:          ar.Status,
		PaidAt:          ar.PaidAt,
		CreatedBy:       ar.CreatedBy,
		CreatedAt:       ar.CreatedAt,
		UpdatedAt:       ar.UpdatedAt,
		Version:         ar.Version,
	}
}

func overdueDays(ar *finance.AccountReceivable, today time.Time) int {
	if !ar.IsOverdue(today) {
		return 0
	}
	return ar.DaysOverdue(today)
}

// ReceivableStatusLine is one status row of a receivable summary
type ReceivableStatusLine struct {
	Status          finance.ReceivableStatus `json:"status"`
	Count           int64                    `json:"count"`
	Amount          decimal.Decimal          `json:"amount"`
	PaidAmount      decimal.Decimal          `json:"paid_amount"`
	RemainingAmount decimal.Decimal          `json:"remaining_amount"`
}

// ReceivableSummary aggregates receivables per status
type ReceivableSummary struct {
	Lines           []ReceivableStatusLine `json:"lines"`
	Count           int64                  `json:"count"`
	TotalAmount     decimal.Decimal        `json:"total_amount"`
	PaidAmount      decimal.Decimal        `json:"paid_amount"`
	RemainingAmount decimal.Decimal        `json:"remaining_amount"`
	CollectionRate  decimal.Decimal        `json:"collection_rate"`
}

// ===================== Payment DTOs =====================

// RegisterPaymentInput is the input for registering a payment
type RegisterPaymentInput struct {
	ReceivableID    uuid.UUID
	Amount          decimal.Decimal
	PaymentDate     time.Time
	Method          finance.PaymentMethod
	ReferenceNumber string
}

// VoucherUpload is a voucher file sent for a payment
type VoucherUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// PaymentResponse is the API view of a payment
type PaymentResponse struct {
	ID              uuid.UUID             `json:"id"`
	ReceivableID    uuid.UUID             `json:"receivable_id"`
	StudentID       uuid.UUID             `json:"student_id"`
	Amount          decimal.Decimal       `json:"amount"`
	PaymentDate     time.Time             `json:"payment_date"`
	Method          finance.PaymentMethod `json:"method"`
	ReferenceNumber string                `json:"reference_number,omitempty"`
	VoucherRef      string                `json:"voucher_ref,omitempty"`
	Status          finance.PaymentStatus `json:"status"`
	ConfirmedAt     *time.Time            `json:"confirmed_at,omitempty"`
	ConfirmedBy     *uuid.UUID            `json:"confirmed_by,omitempty"`
	RejectedAt      *time.Time            `json:"rejected_at,omitempty"`
	RejectionReason string                `json:"rejection_reason,omitempty"`
	CancelledAt     *time.Time            `json:"cancelled_at,omitempty"`
	CancelReason    string                `json:"cancel_reason,omitempty"`
	CreatedBy       *uuid.UUID            `json:"created_by,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	Version         int                   `json:"version"`
}

// ToPaymentResponse maps a payment
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
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
		CreatedBy:       p.CreatedBy,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		Version:         p.Version,
	}
}

// SettlementResponse is a payment together with the receivable it changed
type SettlementResponse struct {
	Payment    PaymentResponse    `json:"payment"`
	Receivable ReceivableResponse `json:"receivable"`
}

// ===================== Payment plan DTOs =====================

// CreatePaymentPlanInput is the input for creating a plan
type CreatePaymentPlanInput struct {
	StudentID        uuid.UUID
	ReceivableID     *uuid.UUID
	TotalAmount      decimal.Decimal
	InstallmentCount int
	Frequency        finance.PlanFrequency
	StartDate        time.Time
	Description      string
}

// PayInstallmentInput carries the payment data for settling an installment.
// Amount defaults to the installment amount; ReceivableID defaults to the plan's.
type PayInstallmentInput struct {
	ReceivableID    *uuid.UUID
	Amount          *decimal.Decimal
	PaymentDate     time.Time
	Method          finance.PaymentMethod
	ReferenceNumber string
}

// InstallmentResponse is one scheduled installment
type InstallmentResponse struct {
	ID        uuid.UUID                 `json:"id"`
	Number    int                       `json:"number"`
	Amount    decimal.Decimal           `json:"amount"`
	DueDate   time.Time                 `json:"due_date"`
	Status    finance.InstallmentStatus `json:"status"`
	IsOverdue bool                      `json:"is_overdue"`
	PaymentID *uuid.UUID                `json:"payment_id,omitempty"`
	PaidAt    *time.Time                `json:"paid_at,omitempty"`
}

// PaymentPlanResponse is a plan with its schedule
type PaymentPlanResponse struct {
	ID               uuid.UUID             `json:"id"`
	StudentID        uuid.UUID             `json:"student_id"`
	ReceivableID     *uuid.UUID            `json:"receivable_id,omitempty"`
	TotalAmount      decimal.Decimal       `json:"total_amount"`
	PaidAmount       decimal.Decimal       `json:"paid_amount"`
	InstallmentCount int                   `json:"installment_count"`
	Frequency        finance.PlanFrequency `json:"frequency"`
	StartDate        time.Time             `json:"start_date"`
	Description      string                `json:"description"`
	Status           finance.PlanStatus    `json:"status"`
	NextDueDate      *time.Time            `json:"next_due_date,omitempty"`
	Installments     []InstallmentResponse `json:"installments"`
	SuspendedAt      *time.Time            `json:"suspended_at,omitempty"`
	CompletedAt      *time.Time            `json:"completed_at,omitempty"`
	CancelledAt      *time.Time            `json:"cancelled_at,omitempty"`
	CancelReason     string                `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	Version          int                   `json:"version"`
}

// ToPaymentPlanResponse maps a plan and its installments
func ToPaymentPlanResponse(p *finance.PaymentPlan, today time.Time) PaymentPlanResponse {
	resp := PaymentPlanResponse{
		ID:               p.ID,
		StudentID:        p.StudentID,
		ReceivableID:     p.ReceivableID,
		TotalAmount:      p.TotalAmount,
		PaidAmount:       p.PaidAmount(),
		InstallmentCount: p.InstallmentCount,
		Frequency:        p.Frequency,
		StartDate:        p.StartDate,
		Description:      p.Description,
		Status:           p.Status,
		SuspendedAt:      p.SuspendedAt,
		CompletedAt:      p.CompletedAt,
		CancelledAt:      p.CancelledAt,
		CancelReason:     p.CancelReason,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Version:          p.Version,
		Installments: lo.Map(p.Installments, func(i finance.PaymentPlanInstallment, _ int) InstallmentResponse {
			return InstallmentResponse{
				ID:        i.ID,
				Number:    i.Number,
				Amount:    i.Amount,
				DueDate:   i.DueDate,
				Status:    i.Status,
				IsOverdue: i.IsOverdue(today),
				PaymentID: i.PaymentID,
				PaidAt:    i.PaidAt,
			}
		}),
	}
	if next := p.NextPendingInstallment(); next != nil {
		due := next.DueDate
		resp.NextDueDate = &due
	}
	return resp
}

// InstallmentPaymentResponse is the outcome of paying one installment
type InstallmentPaymentResponse struct {
	Plan       PaymentPlanResponse `json:"plan"`
	Payment    PaymentResponse     `json:"payment"`
	Receivable ReceivableResponse  `json:"receivable"`
}

// ===================== Invoice DTOs =====================

// InvoiceItemResponse is one invoice line
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ConceptID   uuid.UUID       `json:"concept_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Discount    decimal.Decimal `json:"discount"`
	Tax         decimal.Decimal `json:"tax"`
}

// InvoiceResponse is the API view of an invoice
type InvoiceResponse struct {
	ID               uuid.UUID             `json:"id"`
	InvoiceNumber    string                `json:"invoice_number"`
	StudentID        uuid.UUID             `json:"student_id"`
	Period           finance.BillingPeriod `json:"period"`
	Subtotal         decimal.Decimal       `json:"subtotal"`
	Discount         decimal.Decimal       `json:"discount"`
	Tax              decimal.Decimal       `json:"tax"`
	Total            decimal.Decimal       `json:"total"`
	DueDate          time.Time             `json:"due_date"`
	Status           finance.InvoiceStatus `json:"status"`
	IssuedAt         *time.Time            `json:"issued_at,omitempty"`
	PaidAt           *time.Time            `json:"paid_at,omitempty"`
	OverdueAt        *time.Time            `json:"overdue_at,omitempty"`
	CancelledAt      *time.Time            `json:"cancelled_at,omitempty"`
	PaymentReference string                `json:"payment_reference,omitempty"`
	CancelReason     string                `json:"cancel_reason,omitempty"`
	Notes            string                `json:"notes,omitempty"`
	Items            []InvoiceItemResponse `json:"items"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	Version          int                   `json:"version"`
}

// ToInvoiceResponse maps an invoice and its items
func ToInvoiceResponse(inv *finance.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:               inv.ID,
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
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
		Version:          inv.Version,
		Items: lo.Map(inv.Items, func(it finance.InvoiceItem, _ int) InvoiceItemResponse {
			return InvoiceItemResponse{
				ID:          it.ID,
				ConceptID:   it.ConceptID,
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				LineTotal:   it.LineTotal,
				Discount:    it.Discount,
				Tax:         it.Tax,
			}
		}),
	}
}

// GenerationOutcome tells what happened to one student in a generation run
type GenerationOutcome string

const (
	GenerationCreated   GenerationOutcome = "created"
	GenerationUpdated   GenerationOutcome = "updated"
	GenerationUnchanged GenerationOutcome = "unchanged"
	GenerationSkipped   GenerationOutcome = "skipped"
	GenerationFailed    GenerationOutcome = "failed"
)

// GenerationResult is the per-student line of a generation run
type GenerationResult struct {
	StudentID     uuid.UUID         `json:"student_id"`
	InvoiceID     *uuid.UUID        `json:"invoice_id,omitempty"`
	InvoiceNumber string            `json:"invoice_number,omitempty"`
	Outcome       GenerationOutcome `json:"outcome"`
	ErrorCode     string            `json:"error_code,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// GenerationReport summarizes a monthly generation run
type GenerationReport struct {
	Period  finance.BillingPeriod `json:"period"`
	Results []GenerationResult    `json:"results"`
	Created int                   `json:"created"`
	Updated int                   `json:"updated"`
	Skipped int                   `json:"skipped"`
	Failed  int                   `json:"failed"`
}

// ===================== Collection DTOs =====================

// Dashboard is the collection overview of a school
type Dashboard struct {
	AsOf               time.Time       `json:"as_of"`
	TotalReceivable    decimal.Decimal `json:"total_receivable"`
	PendingAmount      decimal.Decimal `json:"pending_amount"`
	OverdueAmount      decimal.Decimal `json:"overdue_amount"`
	OverdueCount       int64           `json:"overdue_count"`
	CollectedAmount    decimal.Decimal `json:"collected_amount"`
	CollectedThisMonth decimal.Decimal `json:"collected_this_month"`
	CollectedLastMonth decimal.Decimal `json:"collected_last_month"`
	PaymentGrowth      decimal.Decimal `json:"payment_growth"`
	CollectionRate     decimal.Decimal `json:"collection_rate"`
	ActivePlans        int64           `json:"active_plans"`
	CompletedPlans     int64           `json:"completed_plans"`
}

// TrendPoint is one month of collection activity
type TrendPoint struct {
	Month             string          `json:"month"`
	PaymentsCount     int64           `json:"payments_count"`
	PaymentsAmount    decimal.Decimal `json:"payments_amount"`
	ReceivablesCount  int64           `json:"receivables_count"`
	ReceivablesAmount decimal.Decimal `json:"receivables_amount"`
}

// MethodBreakdownLine is the share of one payment method
type MethodBreakdownLine struct {
	Method     finance.PaymentMethod `json:"method"`
	Count      int64                 `json:"count"`
	Amount     decimal.Decimal       `json:"amount"`
	Average    decimal.Decimal       `json:"average"`
	Percentage decimal.Decimal       `json:"percentage"`
}

// MethodBreakdown splits confirmed payments of a date range by method
type MethodBreakdown struct {
	From  time.Time             `json:"from"`
	To    time.Time             `json:"to"`
	Lines []MethodBreakdownLine `json:"lines"`
	Count int64                 `json:"count"`
	Total decimal.Decimal       `json:"total"`
}
