package persistence

import (
	"context"
	"sync"
	"testing"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type settlementServices struct {
	receivables *appfinance.ReceivableService
	payments    *appfinance.PaymentService
	plans       *appfinance.PaymentPlanService
}

func newSettlementServices(db *gorm.DB) settlementServices {
	txScope := NewGormTransactionScope(db)
	receivableRepo := NewGormAccountReceivableRepository(db)
	paymentRepo := NewGormPaymentRepository(db)
	return settlementServices{
		receivables: appfinance.NewReceivableService(receivableRepo, paymentRepo, txScope),
		payments:    appfinance.NewPaymentService(paymentRepo, nil, txScope),
		plans:       appfinance.NewPaymentPlanService(NewGormPaymentPlanRepository(db), receivableRepo, txScope),
	}
}

func TestSettlement_ReceivableLifecycle(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newSettlementServices(db)
	ctx := context.Background()
	scope := testScope()

	ar, err := svc.receivables.Create(ctx, scope, appfinance.CreateReceivableInput{
		StudentID: uuid.New(),
		ConceptID: uuid.New(),
		Amount:    money("500.00"),
		DueDate:   testToday().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	pay := func(amount string) *appfinance.SettlementResponse {
		registered, err := svc.payments.Register(ctx, scope, appfinance.RegisterPaymentInput{
			ReceivableID: ar.ID,
			Amount:       money(amount),
			Method:       finance.PaymentMethodCash,
		})
		require.NoError(t, err)
		confirmed, err := svc.payments.Confirm(ctx, scope, registered.Payment.ID)
		require.NoError(t, err)
		return confirmed
	}

	first := pay("200.00")
	assert.Equal(t, finance.ReceivableStatusPartial, first.Receivable.Status)
	assert.True(t, first.Receivable.RemainingAmount.Equal(money("300")))

	second := pay("300.00")
	assert.Equal(t, finance.ReceivableStatusPaid, second.Receivable.Status)
	assert.True(t, second.Receivable.RemainingAmount.IsZero())

	_, err = svc.payments.Register(ctx, scope, appfinance.RegisterPaymentInput{
		ReceivableID: ar.ID,
		Amount:       money("1.00"),
		Method:       finance.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, shared.ErrConflict)

	cancelled, err := svc.payments.Cancel(ctx, scope, first.Payment.ID, "bounced")
	require.NoError(t, err)
	assert.Equal(t, finance.PaymentStatusCancelled, cancelled.Payment.Status)
	assert.Equal(t, finance.ReceivableStatusPartial, cancelled.Receivable.Status)
	assert.True(t, cancelled.Receivable.RemainingAmount.Equal(money("200")))

	stored, err := svc.receivables.Get(ctx, scope, ar.ID)
	require.NoError(t, err)
	assert.True(t, stored.PaidAmount.Equal(money("300")))

	err = svc.receivables.Delete(ctx, scope, ar.ID)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestSettlement_ConcurrentRegistrationsShareTheBalance(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newSettlementServices(db)
	ctx := context.Background()
	scope := testScope()

	ar, err := svc.receivables.Create(ctx, scope, appfinance.CreateReceivableInput{
		StudentID: uuid.New(),
		ConceptID: uuid.New(),
		Amount:    money("100.00"),
		DueDate:   testToday(),
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.payments.Register(ctx, scope, appfinance.RegisterPaymentInput{
				ReceivableID: ar.ID,
				Amount:       money("80.00"),
				Method:       finance.PaymentMethodMobileMoney,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, shared.ErrValidation)
	}
	assert.Equal(t, 1, succeeded)

	count, err := NewGormPaymentRepository(db).CountByReceivable(ctx, scope.TenantID, ar.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSettlement_CancellingInstallmentPaymentReopensPlan(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newSettlementServices(db)
	ctx := context.Background()
	scope := testScope()
	studentID := uuid.New()

	ar, err := svc.receivables.Create(ctx, scope, appfinance.CreateReceivableInput{
		StudentID: studentID,
		ConceptID: uuid.New(),
		Amount:    money("600.00"),
		DueDate:   testToday().AddDate(0, 2, 0),
	})
	require.NoError(t, err)
	plan, err := svc.plans.Create(ctx, scope, appfinance.CreatePaymentPlanInput{
		StudentID:        studentID,
		ReceivableID:     &ar.ID,
		TotalAmount:      money("600.00"),
		InstallmentCount: 2,
		Frequency:        finance.PlanFrequencyMonthly,
		StartDate:        testToday(),
	})
	require.NoError(t, err)

	var last *appfinance.InstallmentPaymentResponse
	for _, inst := range plan.Installments {
		last, err = svc.plans.PayInstallment(ctx, scope, plan.ID, inst.ID, appfinance.PayInstallmentInput{
			Method: finance.PaymentMethodCash,
		})
		require.NoError(t, err)
	}
	require.Equal(t, finance.PlanStatusCompleted, last.Plan.Status)
	require.Equal(t, finance.ReceivableStatusPaid, last.Receivable.Status)

	cancelled, err := svc.payments.Cancel(ctx, scope, last.Payment.ID, "bounced")
	require.NoError(t, err)
	assert.True(t, cancelled.Receivable.RemainingAmount.Equal(money("300")))

	reopened, err := svc.plans.Get(ctx, scope, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.PlanStatusActive, reopened.Status)
	assert.Nil(t, reopened.CompletedAt)
	assert.Equal(t, finance.InstallmentStatusPaid, reopened.Installments[0].Status)
	assert.Equal(t, finance.InstallmentStatusPending, reopened.Installments[1].Status)
	assert.Nil(t, reopened.Installments[1].PaymentID)
	assert.True(t, reopened.PaidAmount.Equal(money("300")))

	again, err := svc.plans.PayInstallment(ctx, scope, plan.ID, plan.Installments[1].ID, appfinance.PayInstallmentInput{
		Method: finance.PaymentMethodMobileMoney,
	})
	require.NoError(t, err)
	assert.Equal(t, finance.PlanStatusCompleted, again.Plan.Status)
	assert.Equal(t, finance.ReceivableStatusPaid, again.Receivable.Status)
}

func TestSettlement_InstallmentCannotSettleAnotherStudent(t *testing.T) {
	db := setupLedgerTestDB(t)
	svc := newSettlementServices(db)
	ctx := context.Background()
	scope := testScope()

	plan, err := svc.plans.Create(ctx, scope, appfinance.CreatePaymentPlanInput{
		StudentID:        uuid.New(),
		TotalAmount:      money("600.00"),
		InstallmentCount: 2,
		Frequency:        finance.PlanFrequencyMonthly,
		StartDate:        testToday(),
	})
	require.NoError(t, err)
	other, err := svc.receivables.Create(ctx, scope, appfinance.CreateReceivableInput{
		StudentID: uuid.New(),
		ConceptID: uuid.New(),
		Amount:    money("600.00"),
		DueDate:   testToday().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	_, err = svc.plans.PayInstallment(ctx, scope, plan.ID, plan.Installments[0].ID, appfinance.PayInstallmentInput{
		ReceivableID: &other.ID,
		Method:       finance.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	stored, err := svc.receivables.Get(ctx, scope, other.ID)
	require.NoError(t, err)
	assert.True(t, stored.RemainingAmount.Equal(money("600")))
	count, err := NewGormPaymentRepository(db).CountByReceivable(ctx, scope.TenantID, other.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	unpaid, err := svc.plans.Get(ctx, scope, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.InstallmentStatusPending, unpaid.Installments[0].Status)
}
