package handler

import (
	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler serves /invoices
type InvoiceHandler struct {
	BaseHandler
	service *appfinance.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service *appfinance.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// Generate godoc
// @ID           generateInvoice
// @Summary      Generate a student's invoice for a period
// @Description  Builds the invoice from the student's active fee assignments. An existing Draft or Pending invoice for the period is updated in place.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body GenerateInvoiceRequest true "Student and period"
// @Success      200 {object} APIResponse[appfinance.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/generate [post]
func (h *InvoiceHandler) Generate(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	var req GenerateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var p fieldParser
	studentID := p.id("student_id", req.StudentID)
	period := p.period("period", req.Period)
	if p.err != nil {
		h.HandleError(c, p.err)
		return
	}

	resp, err := h.service.GenerateStudentInvoice(c.Request.Context(), scope, studentID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GenerateMonthly godoc
// @ID           generateMonthlyInvoices
// @Summary      Generate invoices for every active student
// @Description  Runs generation for each active student of the school and reports per-student outcomes. A failure for one student does not stop the batch.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body GenerateMonthlyRequest true "Period"
// @Success      200 {object} APIResponse[appfinance.GenerationReport]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/generate-monthly [post]
func (h *InvoiceHandler) GenerateMonthly(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	var req GenerateMonthlyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var p fieldParser
	period := p.period("period", req.Period)
	if p.err != nil {
		h.HandleError(c, p.err)
		return
	}

	report, err := h.service.GenerateMonthlyInvoices(c.Request.Context(), scope, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// OverdueSweep godoc
// @ID           sweepOverdueInvoices
// @Summary      Mark past-due invoices overdue
// @Description  Moves Pending invoices whose due date has passed to Overdue and returns how many changed
// @Tags         invoices
// @Produce      json
// @Success      200 {object} APIResponse[CountData]
// @Security     BearerAuth
// @Router       /invoices/overdue-sweep [post]
func (h *InvoiceHandler) OverdueSweep(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	n, err := h.service.UpdateOverdueInvoices(c.Request.Context(), scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: n})
}

// Get godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[appfinance.InvoiceResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	scope, id, ok := h.scopedID(c)
	if !ok {
		return
	}
	resp, err := h.service.Get(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" Enums(created_at, due_date, invoice_number, period, total, status)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Matches the invoice number"
// @Param        student_id query string false "Student" format(uuid)
// @Param        status query string false "Status" Enums(DRAFT, PENDING, PAID, OVERDUE, CANCELLED)
// @Param        period query string false "Billing period (YYYY-MM)"
// @Param        due_from query string false "Due on or after" format(date)
// @Param        due_to query string false "Due on or before" format(date)
// @Param        min_total query string false "Minimum total"
// @Param        max_total query string false "Maximum total"
// @Success      200 {object} APIResponse[[]appfinance.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	var q ListInvoicesQuery
	if !h.bindQuery(c, &q) {
		return
	}
	var p fieldParser
	filter := q.toFilter(&p)
	if p.err != nil {
		h.HandleError(c, p.err)
		return
	}

	result, err := h.service.List(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(c, result)
}

// Issue godoc
// @ID           issueInvoice
// @Summary      Issue a draft invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[appfinance.InvoiceResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/issue [post]
func (h *InvoiceHandler) Issue(c *gin.Context) {
	scope, id, ok := h.scopedID(c)
	if !ok {
		return
	}
	resp, err := h.service.Issue(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkPaid godoc
// @ID           markInvoicePaid
// @Summary      Mark an invoice as paid
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body MarkPaidRequest true "Payment reference"
// @Success      200 {object} APIResponse[appfinance.InvoiceResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/mark-paid [post]
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	scope, id, ok := h.scopedID(c)
	if !ok {
		return
	}
	var req MarkPaidRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.MarkAsPaid(c.Request.Context(), scope, id, req.Reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
// @ID           cancelInvoice
// @Summary      Cancel an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body ReasonRequest true "Reason"
// @Success      200 {object} APIResponse[appfinance.InvoiceResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	scope, id, ok := h.scopedID(c)
	if !ok {
		return
	}
	var req ReasonRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Cancel(c.Request.Context(), scope, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete a draft invoice
// @Tags         invoices
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	scope, id, ok := h.scopedID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), scope, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
