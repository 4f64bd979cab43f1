package handler

import (
	"errors"
	"io"
	"net/http"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// VoucherFormField is the multipart field holding the voucher file
const VoucherFormField = "file"

// PaymentHandler serves /payments
type PaymentHandler struct {
	BaseHandler
	service         *appfinance.PaymentService
	maxVoucherBytes int64
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service *appfinance.PaymentService, maxVoucherBytes int64) *PaymentHandler {
	return &PaymentHandler{service: service, maxVoucherBytes: maxVoucherBytes}
}

// Register godoc
// @ID           registerPayment
// @Summary      Register a payment
// @Description  Records a Pending payment against a receivable. The amount may not exceed what remains after other pending payments.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body RegisterPaymentRequest true "Payment"
// @Success      201 {object} APIResponse[appfinance.SettlementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments [post]
func (h *PaymentHandler) Register(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	var req RegisterPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var p fieldParser
	in := req.toInput(&p)
	if p.err != nil {
		h.HandleError(c, p.err)
		return
	}

	resp, err := h.service.Register(c.Request.Context(), scope, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @ID           getPayment
// @Summary      Get a payment
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[appfinance.PaymentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
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
// @ID           listPayments
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" Enums(created_at, payment_date, amount, status, method)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        search query string false "Matches the reference number"
// @Param        receivable_id query string false "Receivable" format(uuid)
// @Param        student_id query string false "Student" format(uuid)
// @Param        status query string false "Status" Enums(PENDING, CONFIRMED, REJECTED, CANCELLED)
// @Param        method query string false "Method" Enums(CASH, BANK_TRANSFER, CARD, MOBILE_MONEY, CHEQUE)
// @Param        date_from query string false "Paid on or after" format(date)
// @Param        date_to query string false "Paid on or before" format(date)
// @Param        min_amount query string false "Minimum amount"
// @Param        max_amount query string false "Maximum amount"
// @Success      200 {object} APIResponse[[]appfinance.PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	var q ListPaymentsQuery
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
// @ID           updatePayment
// @Summary      Update a pending payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body UpdatePaymentRequest true "Changes"
// @Success      200 {object} APIResponse[appfinance.PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	scope, id, ok := h.scopedID(c)
	if !ok {
		return
	}
	var req UpdatePaymentRequest
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

// Confirm godoc
// @ID           confirmPayment
// @Summary      Confirm a payment
// @Description  Confirms a Pending payment and applies it to its receivable
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[appfinance.SettlementResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/confirm [post]
func (h *PaymentHandler) Confirm(c *gin.Context) {
	scope, id, ok := h.scopedID(c)
	if !ok {
		return
	}
	resp, err := h.service.Confirm(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reject godoc
// @ID           rejectPayment
// @Summary      Reject a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body ReasonRequest true "Reason"
// @Success      200 {object} APIResponse[appfinance.SettlementResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/reject [post]
func (h *PaymentHandler) Reject(c *gin.Context) {
	scope, id, ok := h.scopedID(c)
	if !ok {
		return
	}
	var req ReasonRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Reject(c.Request.Context(), scope, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
// @ID           cancelPayment
// @Summary      Cancel a payment
// @Description  Cancels a payment; a Confirmed payment is reversed from its receivable
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body ReasonRequest true "Reason"
// @Success      200 {object} APIResponse[appfinance.SettlementResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/cancel [post]
func (h *PaymentHandler) Cancel(c *gin.Context) {
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

// UploadVoucher godoc
// @ID           uploadPaymentVoucher
// @Summary      Attach a voucher to a payment
// @Description  Stores a receipt image or PDF and records its reference on a Pending or Confirmed payment
// @Tags         payments
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        file formData file true "Voucher (PDF, PNG, JPEG or WebP)"
// @Success      200 {object} APIResponse[appfinance.PaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/voucher [post]
func (h *PaymentHandler) UploadVoucher(c *gin.Context) {
	scope, id, ok := h.scopedID(c)
	if !ok {
		return
	}
	if h.maxVoucherBytes > 0 {
		// multipart framing needs headroom over the file itself
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxVoucherBytes+64<<10)
	}
	header, err := c.FormFile(VoucherFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Voucher exceeds the maximum allowed size")
			return
		}
		h.ValidationError(c, VoucherFormField, "A voucher file is required")
		return
	}
	if h.maxVoucherBytes > 0 && header.Size > h.maxVoucherBytes {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Voucher exceeds the maximum allowed size")
		return
	}

	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	resp, err := h.service.AttachVoucher(c.Request.Context(), scope, id, appfinance.VoucherUpload{
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
