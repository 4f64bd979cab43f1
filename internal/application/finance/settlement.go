package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The functions in this file are the only code that changes how much of a
// receivable is settled. Each runs inside a caller-owned transaction and
// expects the receivable to be loaded with FindByIDForUpdate, so the row lock
// and the version check both guard the write.

// registerPayment checks the amount against the locked receivable and inserts
// a Pending payment.
func registerPayment(
	ctx context.Context,
	repos TransactionalRepositories,
	scope shared.TenantScope,
	in RegisterPaymentInput,
	today time.Time,
) (*finance.Payment, *finance.AccountReceivable, error) {
	ar, err := repos.Receivables().FindByIDForUpdate(ctx, scope.TenantID, in.ReceivableID)
	if err != nil {
		return nil, nil, err
	}
	pendingTotal, err := pendingTotalExcept(ctx, repos, scope.TenantID, ar.ID, uuid.Nil)
	if err != nil {
		return nil, nil, err
	}
	if err := ar.AcceptPayment(in.Amount, pendingTotal); err != nil {
		return nil, nil, err
	}

	payment, err := finance.NewPayment(scope, ar, in.Amount, in.PaymentDate, in.Method, in.ReferenceNumber, today)
	if err != nil {
		return nil, nil, err
	}
	if err := repos.Payments().Save(ctx, payment); err != nil {
		return nil, nil, fmt.Errorf("failed to save payment: %w", err)
	}
	if err := repos.Receivables().SaveWithLock(ctx, ar); err != nil {
		return nil, nil, err
	}
	return payment, ar, nil
}

// confirmPayment confirms a Pending payment and recomputes its receivable
func confirmPayment(
	ctx context.Context,
	repos TransactionalRepositories,
	scope shared.TenantScope,
	payment *finance.Payment,
	ar *finance.AccountReceivable,
	now time.Time,
) error {
	if err := payment.Confirm(scope.Actor(), now); err != nil {
		return err
	}
	if err := repos.Payments().SaveWithLock(ctx, payment); err != nil {
		return err
	}
	return recomputeReceivable(ctx, repos, ar, now)
}

// recomputeReceivable derives paid, remaining and status from the confirmed
// payments stored for the receivable. It writes only when something changed.
func recomputeReceivable(
	ctx context.Context,
	repos TransactionalRepositories,
	ar *finance.AccountReceivable,
	now time.Time,
) error {
	payments, err := repos.Payments().FindByReceivable(ctx, ar.TenantID, ar.ID)
	if err != nil {
		return fmt.Errorf("failed to load payments: %w", err)
	}
	confirmed := finance.SumPayments(payments, finance.PaymentStatusConfirmed)
	changed, err := ar.Recompute(confirmed, now)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return repos.Receivables().SaveWithLock(ctx, ar)
}

// pendingTotalExcept sums the Pending payments of a receivable, leaving out
// one payment (uuid.Nil leaves out nothing).
func pendingTotalExcept(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID, receivableID, except uuid.UUID,
) (decimal.Decimal, error) {
	payments, err := repos.Payments().FindByReceivable(ctx, tenantID, receivableID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load payments: %w", err)
	}
	others := make([]finance.Payment, 0, len(payments))
	for i := range payments {
		if payments[i].ID != except {
			others = append(others, payments[i])
		}
	}
	return finance.SumPayments(others, finance.PaymentStatusPending), nil
}

// reopenInstallment puts back the plan installment settled by a cancelled
// payment. Returns nil when the payment did not settle an installment.
func reopenInstallment(
	ctx context.Context,
	repos TransactionalRepositories,
	scope shared.TenantScope,
	paymentID uuid.UUID,
	now time.Time,
) (*finance.PaymentPlan, error) {
	plan, err := repos.Plans().FindByPaymentIDForUpdate(ctx, scope.TenantID, paymentID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !plan.ReopenInstallment(paymentID, now) {
		return nil, nil
	}
	if err := repos.Plans().SaveWithLock(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}
