package handler

import (
	"github.com/campusledger/backend/internal/interfaces/http/router"
)

// Routes returns the /receivables route group
func (h *ReceivableHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("receivables", "/receivables").
		POST("", h.Create).
		GET("", h.List).
		GET("/summary", h.Summary).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete).
		POST("/:id/recompute", h.Recompute)
}

// Routes returns the /payments route group
func (h *PaymentHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("payments", "/payments").
		POST("", h.Register).
		GET("", h.List).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		POST("/:id/confirm", h.Confirm).
		POST("/:id/reject", h.Reject).
		POST("/:id/cancel", h.Cancel).
		POST("/:id/voucher", h.UploadVoucher)
}

// Routes returns the /payment-plans route group
func (h *PaymentPlanHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("payment-plans", "/payment-plans").
		POST("", h.Create).
		GET("", h.List).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		POST("/:id/suspend", h.Suspend).
		POST("/:id/reactivate", h.Reactivate).
		POST("/:id/cancel", h.Cancel).
		POST("/:id/installments/:installmentId/pay", h.PayInstallment)
}

// Routes returns the /invoices route group
func (h *InvoiceHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("invoices", "/invoices").
		POST("/generate", h.Generate).
		POST("/generate-monthly", h.GenerateMonthly).
		POST("/overdue-sweep", h.OverdueSweep).
		GET("", h.List).
		GET("/:id", h.Get).
		DELETE("/:id", h.Delete).
		POST("/:id/issue", h.Issue).
		POST("/:id/mark-paid", h.MarkPaid).
		POST("/:id/cancel", h.Cancel)
}

// Routes returns the /collections route group
func (h *CollectionHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("collections", "/collections").
		GET("/aging", h.Aging).
		GET("/dashboard", h.Dashboard).
		GET("/trends", h.Trends).
		GET("/payment-methods", h.PaymentMethods)
}

// Routes returns the /auth route group
func (h *AuthHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("auth", "/auth").
		POST("/revoke", h.Revoke)
}
