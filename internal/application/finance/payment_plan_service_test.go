package finance

import (
	"context"
	"testing"
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPlanServiceForTest(f *fixture) *PaymentPlanService {
	svc := NewPaymentPlanService(f.plans, f.receivables, f.txScope)
	svc.SetClock(f.clock)
	return svc
}

func (f *fixture) plan(receivableID *uuid.UUID, total string, count int) *finance.PaymentPlan {
	plan, err := finance.NewPaymentPlan(f.scope, uuid.New(), receivableID, dec(total), count,
		finance.PlanFrequencyMonthly, f.today(), "", f.today())
	if err != nil {
		panic(err)
	}
	plan.ClearDomainEvents()
	return plan
}

func TestPaymentPlanService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("monthly schedule from the start date", func(t *testing.T) {
		f := newFixture()
		f.now = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
		svc := newPlanServiceForTest(f)
		f.plans.On("Save", mock.Anything, mock.AnythingOfType("*finance.PaymentPlan")).Return(nil)

		resp, err := svc.Create(ctx, f.scope, CreatePaymentPlanInput{
			StudentID:        uuid.New(),
			TotalAmount:      dec("1200.00"),
			InstallmentCount: 4,
			Frequency:        finance.PlanFrequencyMonthly,
			StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})

		require.NoError(t, err)
		require.Len(t, resp.Installments, 4)
		for i, inst := range resp.Installments {
			assert.Equal(t, i+1, inst.Number)
			assert.Equal(t, time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC), inst.DueDate)
			assert.True(t, inst.Amount.Equal(dec("300.00")))
		}
		assert.Equal(t, finance.PlanStatusActive, resp.Status)
		require.NotNil(t, resp.NextDueDate)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *resp.NextDueDate)
	})

	t.Run("linked receivable must be the same student", func(t *testing.T) {
		f := newFixture()
		svc := newPlanServiceForTest(f)
		ar := f.receivable("900.00", "0")
		f.receivables.On("FindByIDForTenant", mock.Anything, f.scope.TenantID, ar.ID).Return(ar, nil)

		_, err := svc.Create(ctx, f.scope, CreatePaymentPlanInput{
			StudentID:        uuid.New(),
			ReceivableID:     &ar.ID,
			TotalAmount:      dec("900.00"),
			InstallmentCount: 3,
			Frequency:        finance.PlanFrequencyMonthly,
			StartDate:        f.today(),
		})

		assertDomainCode(t, err, "RECEIVABLE_STUDENT_MISMATCH")
		f.plans.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("installment count out of range", func(t *testing.T) {
		f := newFixture()
		svc := newPlanServiceForTest(f)

		_, err := svc.Create(ctx, f.scope, CreatePaymentPlanInput{
			StudentID:        uuid.New(),
			TotalAmount:      dec("100.00"),
			InstallmentCount: 61,
			Frequency:        finance.PlanFrequencyWeekly,
			StartDate:        f.today(),
		})

		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestPaymentPlanService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newPlanServiceForTest(f)
	plan := f.plan(nil, "600.00", 3)

	f.plans.On("FindByIDForUpdate", mock.Anything, f.scope.TenantID, plan.ID).Return(plan, nil)
	f.plans.On("SaveWithLock", mock.Anything, plan).Return(nil)

	resp, err := svc.Suspend(ctx, f.scope, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.PlanStatusSuspended, resp.Status)

	_, err = svc.Suspend(ctx, f.scope, plan.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	resp, err = svc.Reactivate(ctx, f.scope, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.PlanStatusActive, resp.Status)

	resp, err = svc.Cancel(ctx, f.scope, plan.ID, "family moved")
	require.NoError(t, err)
	assert.Equal(t, finance.PlanStatusCancelled, resp.Status)
	for _, inst := range resp.Installments {
		assert.Equal(t, finance.InstallmentStatusCancelled, inst.Status)
	}

	_, err = svc.Cancel(ctx, f.scope, plan.ID, "again")
	assertDomainCode(t, err, "PLAN_ALREADY_CANCELLED")
}

func TestPaymentPlanService_Update(t *testing.T) {
	f := newFixture()
	svc := newPlanServiceForTest(f)
	plan := f.plan(nil, "100.00", 2)

	f.plans.On("FindByIDForUpdate", mock.Anything, f.scope.TenantID, plan.ID).Return(plan, nil)
	f.plans.On("SaveWithLock", mock.Anything, plan).Return(nil)

	count := 3
	resp, err := svc.Update(context.Background(), f.scope, plan.ID, finance.PlanUpdate{InstallmentCount: &count})

	require.NoError(t, err)
	require.Len(t, resp.Installments, 3)
	assert.True(t, resp.Installments[0].Amount.Equal(dec("33.33")))
	assert.True(t, resp.Installments[1].Amount.Equal(dec("33.33")))
	assert.True(t, resp.Installments[2].Amount.Equal(dec("33.34")))
}

func TestPaymentPlanService_PayInstallment(t *testing.T) {
	ctx := context.Background()

	t.Run("registers, confirms and links a payment", func(t *testing.T) {
		f := newFixture()
		svc := newPlanServiceForTest(f)
		publisher := new(MockEventPublisher)
		svc.SetEventPublisher(publisher)
		ar := f.receivable("600.00", "0")
		plan := f.plan(&ar.ID, "600.00", 2)
		plan.StudentID = ar.StudentID
		inst := plan.Installments[0]

		var saved *finance.Payment
		f.plans.On("FindByIDForUpdate", mock.Anything, f.scope.TenantID, plan.ID).Return(plan, nil)
		f.receivables.On("FindByIDForUpdate", mock.Anything, f.scope.TenantID, ar.ID).Return(ar, nil)
		f.payments.On("Save", mock.Anything, mock.AnythingOfType("*finance.Payment")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*finance.Payment) }).Return(nil)
		f.payments.On("FindByReceivable", mock.Anything, f.scope.TenantID, ar.ID).Return(func() []finance.Payment {
			if saved == nil {
				return []finance.Payment{}
			}
			return []finance.Payment{*saved}
		}, nil)
		f.receivables.On("SaveWithLock", mock.Anything, ar).Return(nil)
		f.payments.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*finance.Payment")).Return(nil)
		f.plans.On("SaveWithLock", mock.Anything, plan).Return(nil)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := svc.PayInstallment(ctx, f.scope, plan.ID, inst.ID, PayInstallmentInput{Method: finance.PaymentMethodMobileMoney})

		require.NoError(t, err)
		assert.Equal(t, finance.PaymentStatusConfirmed, resp.Payment.Status)
		assert.True(t, resp.Payment.Amount.Equal(dec("300.00")))
		assert.Equal(t, finance.ReceivableStatusPartial, resp.Receivable.Status)
		assert.Equal(t, finance.InstallmentStatusPaid, resp.Plan.Installments[0].Status)
		assert.Equal(t, &resp.Payment.ID, resp.Plan.Installments[0].PaymentID)
		assert.Equal(t, finance.PlanStatusActive, resp.Plan.Status)
		f.receivables.AssertNumberOfCalls(t, "SaveWithLock", 2)
		publisher.AssertExpectations(t)
	})

	t.Run("receivable of another student is refused", func(t *testing.T) {
		f := newFixture()
		svc := newPlanServiceForTest(f)
		other := f.receivable("600.00", "0")
		plan := f.plan(nil, "600.00", 2)

		f.plans.On("FindByIDForUpdate", mock.Anything, f.scope.TenantID, plan.ID).Return(plan, nil)
		f.receivables.On("FindByIDForUpdate", mock.Anything, f.scope.TenantID, other.ID).Return(other, nil)
		f.payments.On("FindByReceivable", mock.Anything, f.scope.TenantID, other.ID).Return([]finance.Payment{}, nil)
		f.payments.On("Save", mock.Anything, mock.AnythingOfType("*finance.Payment")).Return(nil)
		f.receivables.On("SaveWithLock", mock.Anything, other).Return(nil)

		_, err := svc.PayInstallment(ctx, f.scope, plan.ID, plan.Installments[0].ID, PayInstallmentInput{
			ReceivableID: &other.ID,
			Method:       finance.PaymentMethodCash,
		})

		assertDomainCode(t, err, "RECEIVABLE_STUDENT_MISMATCH")
		assert.Equal(t, finance.InstallmentStatusPending, plan.Installments[0].Status)
		f.payments.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		f.plans.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("amount must match the installment", func(t *testing.T) {
		f := newFixture()
		svc := newPlanServiceForTest(f)
		receivableID := uuid.New()
		plan := f.plan(&receivableID, "600.00", 2)
		f.plans.On("FindByIDForUpdate", mock.Anything, f.scope.TenantID, plan.ID).Return(plan, nil)

		amount := dec("250.00")
		_, err := svc.PayInstallment(ctx, f.scope, plan.ID, plan.Installments[0].ID, PayInstallmentInput{
			Amount: &amount,
			Method: finance.PaymentMethodCash,
		})

		assertDomainCode(t, err, "INSTALLMENT_AMOUNT_MISMATCH")
	})

	t.Run("unlinked plan needs a receivable", func(t *testing.T) {
		f := newFixture()
		svc := newPlanServiceForTest(f)
		plan := f.plan(nil, "600.00", 2)
		f.plans.On("FindByIDForUpdate", mock.Anything, f.scope.TenantID, plan.ID).Return(plan, nil)

		_, err := svc.PayInstallment(ctx, f.scope, plan.ID, plan.Installments[0].ID, PayInstallmentInput{Method: finance.PaymentMethodCash})

		assertDomainCode(t, err, "RECEIVABLE_REQUIRED")
	})

	t.Run("suspended plan takes no payment", func(t *testing.T) {
		f := newFixture()
		svc := newPlanServiceForTest(f)
		receivableID := uuid.New()
		plan := f.plan(&receivableID, "600.00", 2)
		require.NoError(t, plan.Suspend(f.now))
		f.plans.On("FindByIDForUpdate", mock.Anything, f.scope.TenantID, plan.ID).Return(plan, nil)

		_, err := svc.PayInstallment(ctx, f.scope, plan.ID, plan.Installments[0].ID, PayInstallmentInput{Method: finance.PaymentMethodCash})

		assert.ErrorIs(t, err, shared.ErrInvalidState)
		f.payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
