package handler

import (
	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/interfaces/http/dto"
)

// RegisterPaymentRequest is the body of POST /payments
type RegisterPaymentRequest struct {
	ReceivableID    string `json:"receivable_id" binding:"required,uuid" example:"b8a2f4e0-1f0e-4a8a-9f59-5c1f7d2f1a10"`
	Amount          string `json:"amount" binding:"required,decimal_gt0" example:"150.00"`
	PaymentDate     string `json:"payment_date" binding:"required,date" example:"2026-10-17"`
	Method          string `json:"method" binding:"required,oneof=CASH BANK_TRANSFER CARD MOBILE_MONEY CHEQUE" example:"BANK_TRANSFER"`
	ReferenceNumber string `json:"reference_number" binding:"max=100" example:"TRX-88213"`
}

func (r RegisterPaymentRequest) toInput(p *fieldParser) appfinance.RegisterPaymentInput {
	return appfinance.RegisterPaymentInput{
		ReceivableID:    p.id("receivable_id", r.ReceivableID),
		Amount:          p.amount("amount", r.Amount),
		PaymentDate:     p.date("payment_date", r.PaymentDate),
		Method:          finance.PaymentMethod(r.Method),
		ReferenceNumber: r.ReferenceNumber,
	}
}

// UpdatePaymentRequest is the body of PUT /payments/:id. Only Pending payments can change.
type UpdatePaymentRequest struct {
	Amount          *string `json:"amount" binding:"omitempty,decimal_gt0" example:"120.00"`
	PaymentDate     *string `json:"payment_date" binding:"omitempty,date" example:"2026-10-16"`
	Method          *string `json:"method" binding:"omitempty,oneof=CASH BANK_TRANSFER CARD MOBILE_MONEY CHEQUE"`
	ReferenceNumber *string `json:"reference_number" binding:"omitempty,max=100"`
}

func (r UpdatePaymentRequest) toUpdate(p *fieldParser) finance.PaymentUpdate {
	upd := finance.PaymentUpdate{ReferenceNumber: r.ReferenceNumber}
	if r.Amount != nil {
		amount := p.amount("amount", *r.Amount)
		upd.Amount = &amount
	}
	if r.PaymentDate != nil {
		date := p.date("payment_date", *r.PaymentDate)
		upd.PaymentDate = &date
	}
	if r.Method != nil {
		upd.Method = optEnum[finance.PaymentMethod](*r.Method)
	}
	return upd
}

// ReasonRequest carries the reason of a rejection or cancellation
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,max=500" example:"Transfer bounced"`
}

// ListPaymentsQuery holds the filters of GET /payments
type ListPaymentsQuery struct {
	dto.ListRequest
	ReceivableID string `form:"receivable_id" binding:"omitempty,uuid"`
	StudentID    string `form:"student_id" binding:"omitempty,uuid"`
	Status       string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED REJECTED CANCELLED"`
	Method       string `form:"method" binding:"omitempty,oneof=CASH BANK_TRANSFER CARD MOBILE_MONEY CHEQUE"`
	DateFrom     string `form:"date_from" binding:"omitempty,date"`
	DateTo       string `form:"date_to" binding:"omitempty,date"`
	MinAmount    string `form:"min_amount" binding:"omitempty,decimal_gte0"`
	MaxAmount    string `form:"max_amount" binding:"omitempty,decimal_gte0"`
}

func (q ListPaymentsQuery) toFilter(p *fieldParser) finance.PaymentFilter {
	return finance.PaymentFilter{
		Filter:       q.Filter(),
		ReceivableID: p.optID("receivable_id", q.ReceivableID),
		StudentID:    p.optID("student_id", q.StudentID),
		Status:       optEnum[finance.PaymentStatus](q.Status),
		Method:       optEnum[finance.PaymentMethod](q.Method),
		DateFrom:     p.optDate("date_from", q.DateFrom),
		DateTo:       p.optDate("date_to", q.DateTo),
		MinAmount:    p.optAmount("min_amount", q.MinAmount),
		MaxAmount:    p.optAmount("max_amount", q.MaxAmount),
	}
}
