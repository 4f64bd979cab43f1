package handler

import (
	"time"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/gin-gonic/gin"
)

// TrendsQuery holds the window of GET /collections/trends
type TrendsQuery struct {
	Months int `form:"months" binding:"omitempty,min=1"`
}

// DateRangeQuery is an inclusive range of days. Both ends default to the current month.
type DateRangeQuery struct {
	From string `form:"from" binding:"omitempty,date"`
	To   string `form:"to" binding:"omitempty,date"`
}

// CollectionHandler serves the /collections reports
type CollectionHandler struct {
	BaseHandler
	service *appfinance.CollectionService
	clock   func() time.Time
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(service *appfinance.CollectionService) *CollectionHandler {
	return &CollectionHandler{service: service, clock: time.Now}
}

// Aging godoc
// @ID           agingReport
// @Summary      Aging report
// @Description  Buckets the outstanding balance of unpaid receivables by days past due
// @Tags         collections
// @Produce      json
// @Success      200 {object} APIResponse[finance.AgingReport]
// @Security     BearerAuth
// @Router       /collections/aging [get]
func (h *CollectionHandler) Aging(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	report, err := h.service.AgingReport(c.Request.Context(), scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Dashboard godoc
// @ID           collectionDashboard
// @Summary      Collection dashboard
// @Tags         collections
// @Produce      json
// @Success      200 {object} APIResponse[appfinance.Dashboard]
// @Security     BearerAuth
// @Router       /collections/dashboard [get]
func (h *CollectionHandler) Dashboard(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	dashboard, err := h.service.Dashboard(c.Request.Context(), scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// Trends godoc
// @ID           collectionTrends
// @Summary      Monthly collection trends
// @Tags         collections
// @Produce      json
// @Param        months query int false "Months including the current one" default(6) maximum(24)
// @Success      200 {object} APIResponse[[]appfinance.TrendPoint]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /collections/trends [get]
func (h *CollectionHandler) Trends(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	var q TrendsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	points, err := h.service.Trends(c.Request.Context(), scope, q.Months)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, points)
}

// PaymentMethods godoc
// @ID           paymentMethodBreakdown
// @Summary      Confirmed payments by method
// @Tags         collections
// @Produce      json
// @Param        from query string false "First day" format(date)
// @Param        to query string false "Last day" format(date)
// @Success      200 {object} APIResponse[appfinance.MethodBreakdown]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /collections/payment-methods [get]
func (h *CollectionHandler) PaymentMethods(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	var q DateRangeQuery
	if !h.bindQuery(c, &q) {
		return
	}

	today := finance.DateOnly(h.clock())
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := today
	var p fieldParser
	if q.From != "" {
		from = p.date("from", q.From)
	}
	if q.To != "" {
		to = p.date("to", q.To)
	}
	if p.err != nil {
		h.HandleError(c, p.err)
		return
	}

	breakdown, err := h.service.PaymentMethodBreakdown(c.Request.Context(), scope, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, breakdown)
}
