package handler

import (
	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/interfaces/http/dto"
)

// CreatePaymentPlanRequest is the body of POST /payment-plans
type CreatePaymentPlanRequest struct {
	StudentID        string `json:"student_id" binding:"required,uuid"`
	ReceivableID     string `json:"receivable_id" binding:"omitempty,uuid"`
	TotalAmount      string `json:"total_amount" binding:"required,decimal_gt0" example:"1200.00"`
	InstallmentCount int    `json:"installment_count" binding:"required,min=2,max=60" example:"10"`
	Frequency        string `json:"frequency" binding:"required,oneof=WEEKLY MONTHLY QUARTERLY SEMESTER ANNUAL" example:"MONTHLY"`
	StartDate        string `json:"start_date" binding:"required,date" example:"2026-11-01"`
	Description      string `json:"description" binding:"max=500"`
}

func (r CreatePaymentPlanRequest) toInput(p *fieldParser) appfinance.CreatePaymentPlanInput {
	return appfinance.CreatePaymentPlanInput{
		StudentID:        p.id("student_id", r.StudentID),
		ReceivableID:     p.optID("receivable_id", r.ReceivableID),
		TotalAmount:      p.amount("total_amount", r.TotalAmount),
		InstallmentCount: r.InstallmentCount,
		Frequency:        finance.PlanFrequency(r.Frequency),
		StartDate:        p.date("start_date", r.StartDate),
		Description:      r.Description,
	}
}

// UpdatePaymentPlanRequest is the body of PUT /payment-plans/:id.
// Schedule changes are only accepted before any installment is paid.
type UpdatePaymentPlanRequest struct {
	TotalAmount      *string `json:"total_amount" binding:"omitempty,decimal_gt0"`
	InstallmentCount *int    `json:"installment_count" binding:"omitempty,min=2,max=60"`
	Frequency        *string `json:"frequency" binding:"omitempty,oneof=WEEKLY MONTHLY QUARTERLY SEMESTER ANNUAL"`
	StartDate        *string `json:"start_date" binding:"omitempty,date"`
	Description      *string `json:"description" binding:"omitempty,max=500"`
}

func (r UpdatePaymentPlanRequest) toUpdate(p *fieldParser) finance.PlanUpdate {
	upd := finance.PlanUpdate{InstallmentCount: r.InstallmentCount, Description: r.Description}
	if r.TotalAmount != nil {
		total := p.amount("total_amount", *r.TotalAmount)
		upd.TotalAmount = &total
	}
	if r.Frequency != nil {
		upd.Frequency = optEnum[finance.PlanFrequency](*r.Frequency)
	}
	if r.StartDate != nil {
		start := p.date("start_date", *r.StartDate)
		upd.StartDate = &start
	}
	return upd
}

// PayInstallmentRequest is the body of POST /payment-plans/:id/installments/:installmentId/pay
type PayInstallmentRequest struct {
	ReceivableID    string `json:"receivable_id" binding:"omitempty,uuid"`
	Amount          string `json:"amount" binding:"omitempty,decimal_gt0"`
	PaymentDate     string `json:"payment_date" binding:"required,date"`
	Method          string `json:"method" binding:"required,oneof=CASH BANK_TRANSFER CARD MOBILE_MONEY CHEQUE"`
	ReferenceNumber string `json:"reference_number" binding:"max=100"`
}

func (r PayInstallmentRequest) toInput(p *fieldParser) appfinance.PayInstallmentInput {
	return appfinance.PayInstallmentInput{
		ReceivableID:    p.optID("receivable_id", r.ReceivableID),
		Amount:          p.optAmount("amount", r.Amount),
		PaymentDate:     p.date("payment_date", r.PaymentDate),
		Method:          finance.PaymentMethod(r.Method),
		ReferenceNumber: r.ReferenceNumber,
	}
}

// ListPaymentPlansQuery holds the filters of GET /payment-plans
type ListPaymentPlansQuery struct {
	dto.ListRequest
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=ACTIVE SUSPENDED COMPLETED CANCELLED"`
	Frequency string `form:"frequency" binding:"omitempty,oneof=WEEKLY MONTHLY QUARTERLY SEMESTER ANNUAL"`
}

func (q ListPaymentPlansQuery) toFilter(p *fieldParser) finance.PaymentPlanFilter {
	return finance.PaymentPlanFilter{
		Filter:    q.Filter(),
		StudentID: p.optID("student_id", q.StudentID),
		Status:    optEnum[finance.PlanStatus](q.Status),
		Frequency: optEnum[finance.PlanFrequency](q.Frequency),
	}
}
