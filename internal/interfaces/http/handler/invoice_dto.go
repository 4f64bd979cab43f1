package handler

import (
	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/interfaces/http/dto"
)

// GenerateInvoiceRequest is the body of POST /invoices/generate
type GenerateInvoiceRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	Period    string `json:"period" binding:"required,period" example:"2026-11"`
}

// GenerateMonthlyRequest is the body of POST /invoices/generate-monthly
type GenerateMonthlyRequest struct {
	Period string `json:"period" binding:"required,period" example:"2026-11"`
}

// MarkPaidRequest is the body of POST /invoices/:id/mark-paid
type MarkPaidRequest struct {
	Reference string `json:"reference" binding:"max=100" example:"BANK-20261105-77"`
}

// ListInvoicesQuery holds the filters of GET /invoices
type ListInvoicesQuery struct {
	dto.ListRequest
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=DRAFT PENDING PAID OVERDUE CANCELLED"`
	Period    string `form:"period" binding:"omitempty,period"`
	DueFrom   string `form:"due_from" binding:"omitempty,date"`
	DueTo     string `form:"due_to" binding:"omitempty,date"`
	MinTotal  string `form:"min_total" binding:"omitempty,decimal_gte0"`
	MaxTotal  string `form:"max_total" binding:"omitempty,decimal_gte0"`
}

func (q ListInvoicesQuery) toFilter(p *fieldParser) finance.InvoiceFilter {
	return finance.InvoiceFilter{
		Filter:    q.Filter(),
		StudentID: p.optID("student_id", q.StudentID),
		Status:    optEnum[finance.InvoiceStatus](q.Status),
		Period:    p.optPeriod("period", q.Period),
		DueFrom:   p.optDate("due_from", q.DueFrom),
		DueTo:     p.optDate("due_to", q.DueTo),
		MinTotal:  p.optAmount("min_total", q.MinTotal),
		MaxTotal:  p.optAmount("max_total", q.MaxTotal),
	}
}
