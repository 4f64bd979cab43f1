package finance

import (
	"context"

	"github.com/campusledger/backend/internal/domain/finance"
)

// TransactionScope runs a unit of work atomically.
// If fn returns an error the transaction is rolled back, otherwise it is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the ledger repositories inside one
// transaction. Every repository returned shares the same transaction, so reads
// see the writes made earlier in the unit of work.
type TransactionalRepositories interface {
	Receivables() finance.AccountReceivableRepository
	Payments() finance.PaymentRepository
	Plans() finance.PaymentPlanRepository
	Invoices() finance.InvoiceRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// Useful for tests that do not need real transactions.
type NoOpTransactionScope struct {
	receivables finance.AccountReceivableRepository
	payments    finance.PaymentRepository
	plans       finance.PaymentPlanRepository
	invoices    finance.InvoiceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	receivables finance.AccountReceivableRepository,
	payments finance.PaymentRepository,
	plans finance.PaymentPlanRepository,
	invoices finance.InvoiceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		receivables: receivables,
		payments:    payments,
		plans:       plans,
		invoices:    invoices,
	}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Receivables() finance.AccountReceivableRepository { return s.receivables }
func (s *NoOpTransactionScope) Payments() finance.PaymentRepository              { return s.payments }
func (s *NoOpTransactionScope) Plans() finance.PaymentPlanRepository             { return s.plans }
func (s *NoOpTransactionScope) Invoices() finance.InvoiceRepository              { return s.invoices }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
