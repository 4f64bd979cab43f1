package persistence

import (
	"context"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/domain/finance"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Row locks taken with FindByIDForUpdate are held until Execute returns.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appfinance.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Receivables() finance.AccountReceivableRepository {
	return NewGormAccountReceivableRepository(r.tx)
}

func (r *gormTransactionalRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) Plans() finance.PaymentPlanRepository {
	return NewGormPaymentPlanRepository(r.tx)
}

func (r *gormTransactionalRepositories) Invoices() finance.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

var (
	_ appfinance.TransactionScope          = (*GormTransactionScope)(nil)
	_ appfinance.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

	_ finance.AccountReceivableRepository = (*GormAccountReceivableRepository)(nil)
	_ finance.PaymentRepository           = (*GormPaymentRepository)(nil)
	_ finance.PaymentPlanRepository       = (*GormPaymentPlanRepository)(nil)
	_ finance.InvoiceRepository           = (*GormInvoiceRepository)(nil)
)
