package handler

import (
	"time"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/interfaces/http/dto"
)

// CreateReceivableRequest is the body of POST /receivables
type CreateReceivableRequest struct {
	StudentID   string `json:"student_id" binding:"required,uuid" example:"7f1c1c4e-6a2b-4f7a-9a53-0b2a4c1d9e01"`
	ConceptID   string `json:"concept_id" binding:"required,uuid" example:"0d7c7a57-3d55-4f1e-8a77-6f3c55e0b2aa"`
	Amount      string `json:"amount" binding:"required,decimal_gt0" example:"350.00"`
	DueDate     string `json:"due_date" binding:"required,date" example:"2026-11-10"`
	Description string `json:"description" binding:"max=500" example:"November tuition"`
}

func (r CreateReceivableRequest) toInput(p *fieldParser) appfinance.CreateReceivableInput {
	return appfinance.CreateReceivableInput{
		StudentID:   p.id("student_id", r.StudentID),
		ConceptID:   p.id("concept_id", r.ConceptID),
		Amount:      p.amount("amount", r.Amount),
		DueDate:     p.date("due_date", r.DueDate),
		Description: r.Description,
	}
}

// UpdateReceivableRequest is the body of PUT /receivables/:id. Omitted fields stay unchanged.
type UpdateReceivableRequest struct {
	Amount      *string `json:"amount" binding:"omitempty,decimal_gt0" example:"400.00"`
	DueDate     *string `json:"due_date" binding:"omitempty,date" example:"2026-11-15"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

func (r UpdateReceivableRequest) toUpdate(p *fieldParser) finance.ReceivableUpdate {
	upd := finance.ReceivableUpdate{Description: r.Description}
	if r.Amount != nil {
		amount := p.amount("amount", *r.Amount)
		upd.Amount = &amount
	}
	if r.DueDate != nil {
		due := p.date("due_date", *r.DueDate)
		upd.DueDate = &due
	}
	return upd
}

// ListReceivablesQuery holds the filters of GET /receivables
type ListReceivablesQuery struct {
	dto.ListRequest
	StudentID   string `form:"student_id" binding:"omitempty,uuid"`
	ConceptID   string `form:"concept_id" binding:"omitempty,uuid"`
	Status      string `form:"status" binding:"omitempty,oneof=PENDING PARTIAL PAID"`
	DueFrom     string `form:"due_from" binding:"omitempty,date"`
	DueTo       string `form:"due_to" binding:"omitempty,date"`
	CreatedFrom string `form:"created_from" binding:"omitempty,date"`
	CreatedTo   string `form:"created_to" binding:"omitempty,date"`
	MinAmount   string `form:"min_amount" binding:"omitempty,decimal_gte0"`
	MaxAmount   string `form:"max_amount" binding:"omitempty,decimal_gte0"`
	OverdueOnly bool   `form:"overdue"`
}

func (q ListReceivablesQuery) toFilter(p *fieldParser, today time.Time) finance.ReceivableFilter {
	f := finance.ReceivableFilter{
		Filter:      q.Filter(),
		StudentID:   p.optID("student_id", q.StudentID),
		ConceptID:   p.optID("concept_id", q.ConceptID),
		Status:      optEnum[finance.ReceivableStatus](q.Status),
		DueFrom:     p.optDate("due_from", q.DueFrom),
		DueTo:       p.optDate("due_to", q.DueTo),
		CreatedFrom: p.optDate("created_from", q.CreatedFrom),
		CreatedTo:   p.optDate("created_to", q.CreatedTo),
		MinAmount:   p.optAmount("min_amount", q.MinAmount),
		MaxAmount:   p.optAmount("max_amount", q.MaxAmount),
	}
	if q.OverdueOnly {
		f.OverdueAsOf = &today
	}
	return f
}
