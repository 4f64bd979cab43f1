package handler

import (
	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// PaymentPlanHandler serves /payment-plans
type PaymentPlanHandler struct {
	BaseHandler
	service *appfinance.PaymentPlanService
}

// NewPaymentPlanHandler creates a new PaymentPlanHandler
func NewPaymentPlanHandler(service *appfinance.PaymentPlanService) *PaymentPlanHandler {
	return &PaymentPlanHandler{service: service}
}

// Create godoc
// @ID           createPaymentPlan
// @Summary      Create a payment plan
// @Description  Splits a total into installments on a fixed frequency. The last installment absorbs any rounding remainder.
// @Tags         payment-plans
// @Accept       json
// @Produce      json
// @Param        request body CreatePaymentPlanRequest true "Plan"
// @Success      201 {object} APIResponse[appfinance.PaymentPlanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payment-plans [post]
func (h *PaymentPlanHandler) Create(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	var req CreatePaymentPlanRequest
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
// @ID           getPaymentPlan
// @Summary      Get a payment plan
// @Tags         payment-plans
// @Produce      json
// @Param        id path string true "Plan ID" format(uuid)
// @Success      200 {object} APIResponse[appfinance.PaymentPlanResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payment-plans/{id} [get]
func (h *PaymentPlanHandler) Get(c *gin.Context) {
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
// @ID           listPaymentPlans
// @Summary      List payment plans
// @Tags         payment-plans
// @Produce      json
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" Enums(created_at, start_date, total_amount, status)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Matches the description"
// @Param        student_id query string false "Student" format(uuid)
// @Param        status query string false "Status" Enums(ACTIVE, SUSPENDED, COMPLETED, CANCELLED)
// @Param        frequency query string false "Frequency" Enums(WEEKLY, MONTHLY, QUARTERLY, SEMESTER, ANNUAL)
// @Success      200 {object} APIResponse[[]appfinance.PaymentPlanResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payment-plans [get]
func (h *PaymentPlanHandler) List(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	var q ListPaymentPlansQuery
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

// Update godoc
// @ID           updatePaymentPlan
// @Summary      Update a payment plan
// @Description  Changing the amount, count, frequency or start date rebuilds the schedule and is refused once an installment is paid
// @Tags         payment-plans
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID" format(uuid)
// @Param        request body UpdatePaymentPlanRequest true "Changes"
// @Success      200 {object} APIResponse[appfinance.PaymentPlanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payment-plans/{id} [put]
func (h *PaymentPlanHandler) Update(c *gin.Context) {
	scope, id, ok := h.scopedID(c)
	if !ok {
		return
	}
	var req UpdatePaymentPlanRequest
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

// Suspend godoc
// @ID           suspendPaymentPlan
// @Summary      Suspend an active payment plan
// @Tags         payment-plans
// @Produce      json
// @Param        id path string true "Plan ID" format(uuid)
// @Success      200 {object} APIResponse[appfinance.PaymentPlanResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payment-plans/{id}/suspend [post]
func (h *PaymentPlanHandler) Suspend(c *gin.Context) {
	scope, id, ok := h.scopedID(c)
	if !ok {
		return
	}
	resp, err := h.service.Suspend(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reactivate godoc
// @ID           reactivatePaymentPlan
// @Summary      Reactivate a suspended payment plan
// @Tags         payment-plans
// @Produce      json
// @Param        id path string true "Plan ID" format(uuid)
// @Success      200 {object} APIResponse[appfinance.PaymentPlanResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payment-plans/{id}/reactivate [post]
func (h *PaymentPlanHandler) Reactivate(c *gin.Context) {
	scope, id, ok := h.scopedID(c)
	if !ok {
		return
	}
	resp, err := h.service.Reactivate(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
// @ID           cancelPaymentPlan
// @Summary      Cancel a payment plan
// @Tags         payment-plans
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID" format(uuid)
// @Param        request body ReasonRequest true "Reason"
// @Success      200 {object} APIResponse[appfinance.PaymentPlanResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payment-plans/{id}/cancel [post]
func (h *PaymentPlanHandler) Cancel(c *gin.Context) {
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

// PayInstallment godoc
// @ID           payInstallment
// @Summary      Pay an installment
// @Description  Registers and confirms a payment for the installment against the plan's receivable, then marks the installment paid. Installments are paid in order.
// @Tags         payment-plans
// @Accept       json
// @Produce      json
// @Param        id path string true "Plan ID" format(uuid)
// @Param        installmentId path string true "Installment ID" format(uuid)
// @Param        request body PayInstallmentRequest true "Payment"
// @Success      200 {object} APIResponse[appfinance.InstallmentPaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payment-plans/{id}/installments/{installmentId}/pay [post]
func (h *PaymentPlanHandler) PayInstallment(c *gin.Context) {
	scope, planID, ok := h.scopedID(c)
	if !ok {
		return
	}
	installmentID, ok := h.pathID(c, "installmentId")
	if !ok {
		return
	}
	var req PayInstallmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var p fieldParser
	in := req.toInput(&p)
	if p.err != nil {
		h.HandleError(c, p.err)
		return
	}

	resp, err := h.service.PayInstallment(c.Request.Context(), scope, planID, installmentID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
