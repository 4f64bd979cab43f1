package handler

import (
	"time"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/gin-gonic/gin"
)

// ReceivableHandler serves /receivables
type ReceivableHandler struct {
	BaseHandler
	service *appfinance.ReceivableService
	clock   func() time.Time
}

// NewReceivableHandler creates a new ReceivableHandler
func NewReceivableHandler(service *appfinance.ReceivableService) *ReceivableHandler {
	return &ReceivableHandler{service: service, clock: time.Now}
}

// Create godoc
// @ID           createReceivable
// @Summary      Create a receivable
// @Description  Records an amount a student owes for a fee concept
// @Tags         receivables
// @Accept       json
// @Produce      json
// @Param        request body CreateReceivableRequest true "Receivable"
// @Success      201 {object} APIResponse[appfinance.ReceivableResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables [post]
func (h *ReceivableHandler) Create(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	var req CreateReceivableRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var p fieldParser
	in := req.toInput(&p)
	if p.err != nil {
		h.HandleError(c, p.err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), scope, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @ID           getReceivable
// @Summary      Get a receivable
// @Description  Returns a receivable with its paid, remaining and overdue figures
// @Tags         receivables
// @Produce      json
// @Param        id path string true "Receivable ID" format(uuid)
// @Success      200 {object} APIResponse[appfinance.ReceivableResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/{id} [get]
func (h *ReceivableHandler) Get(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
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
// @ID           listReceivables
// @Summary      List receivables
// @Description  Pages through receivables with optional filters
// @Tags         receivables
// @Produce      json
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" Enums(created_at, due_date, amount, remaining_amount, status)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Matches the description"
// @Param        student_id query string false "Student" format(uuid)
// @Param        concept_id query string false "Fee concept" format(uuid)
// @Param        status query string false "Status" Enums(PENDING, PARTIAL, PAID)
// @Param        due_from query string false "Due on or after" format(date)
// @Param        due_to query string false "Due on or before" format(date)
// @Param        created_from query string false "Created on or after" format(date)
// @Param        created_to query string false "Created on or before" format(date)
// @Param        min_amount query string false "Minimum amount"
// @Param        max_amount query string false "Maximum amount"
// @Param        overdue query bool false "Only outstanding receivables past their due date"
// @Success      200 {object} APIResponse[[]appfinance.ReceivableResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables [get]
func (h *ReceivableHandler) List(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}
	scope, _ := h.scope(c)
	result, err := h.service.List(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(c, result)
}

// Summary godoc
// @ID           summarizeReceivables
// @Summary      Summarize receivables
// @Description  Totals per status for the receivables matching the list filters
// @Tags         receivables
// @Produce      json
// @Param        student_id query string false "Student" format(uuid)
// @Param        concept_id query string false "Fee concept" format(uuid)
// @Param        due_from query string false "Due on or after" format(date)
// @Param        due_to query string false "Due on or before" format(date)
// @Success      200 {object} APIResponse[appfinance.ReceivableSummary]
// @Security     BearerAuth
// @Router       /receivables/summary [get]
func (h *ReceivableHandler) Summary(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}
	scope, _ := h.scope(c)
	summary, err := h.service.Summarize(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

func (h *ReceivableHandler) filter(c *gin.Context) (finance.ReceivableFilter, bool) {
	if _, ok := h.scope(c); !ok {
		return finance.ReceivableFilter{}, false
	}
	var q ListReceivablesQuery
	if !h.bindQuery(c, &q) {
		return finance.ReceivableFilter{}, false
	}
	var p fieldParser
	filter := q.toFilter(&p, finance.DateOnly(h.clock().UTC()))
	if p.err != nil {
		h.HandleError(c, p.err)
		return finance.ReceivableFilter{}, false
	}
	return filter, true
}

// Update godoc
// @ID           updateReceivable
// @Summary      Update a receivable
// @Description  Changes amount, due date or description of an outstanding receivable
// @Tags         receivables
// @Accept       json
// @Produce      json
// @Param        id path string true "Receivable ID" format(uuid)
// @Param        request body UpdateReceivableRequest true "Changes"
// @Success      200 {object} APIResponse[appfinance.ReceivableResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/{id} [put]
func (h *ReceivableHandler) Update(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateReceivableRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var p fieldParser
	upd := req.toUpdate(&p)
	if p.err != nil {
		h.HandleError(c, p.err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), scope, id, upd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @ID           deleteReceivable
// @Summary      Delete a receivable
// @Description  Deletes a receivable that has no payments
// @Tags         receivables
// @Param        id path string true "Receivable ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/{id} [delete]
func (h *ReceivableHandler) Delete(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), scope, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Recompute godoc
// @ID           recomputeReceivable
// @Summary      Recompute a receivable's status
// @Description  Re-derives paid amount and status from its confirmed payments
// @Tags         receivables
// @Produce      json
// @Param        id path string true "Receivable ID" format(uuid)
// @Success      200 {object} APIResponse[appfinance.ReceivableResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/{id}/recompute [post]
func (h *ReceivableHandler) Recompute(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.service.RecomputeStatus(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
