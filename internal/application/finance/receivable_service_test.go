package finance

import (
	"context"
	"testing"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newReceivableServiceForTest(f *fixture) *ReceivableService {
	svc := NewReceivableService(f.receivables, f.payments, f.txScope)
	svc.SetClock(f.clock)
	return svc
}

func TestReceivableService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("new receivable is pending with nothing paid", func(t *testing.T) {
		f := newFixture()
		svc := newReceivableServiceForTest(f)
		f.receivables.On("Save", mock.Anything, mock.AnythingOfType("*finance.AccountReceivable")).Return(nil)

		resp, err := svc.Create(ctx, f.scope, CreateReceivableInput{
			StudentID:   uuid.New(),
			ConceptID:   uuid.New(),
			Amount:      dec("750.00"),
			DueDate:     f.today(),
			Description: "Term 2 tuition",
		})

		require.NoError(t, err)
		assert.Equal(t, finance.ReceivableStatusPending, resp.Status)
		assert.True(t, resp.RemainingAmount.Equal(dec("750.00")))
		assert.True(t, resp.PaidAmount.IsZero())
		assert.False(t, resp.IsOverdue)
		assert.Equal(t, &f.scope.ActorID, resp.CreatedBy)
		f.assertExpectations(t)
	})

	t.Run("past due date is rejected before any write", func(t *testing.T) {
		f := newFixture()
		svc := newReceivableServiceForTest(f)

		_, err := svc.Create(ctx, f.scope, CreateReceivableInput{
			StudentID: uuid.New(),
			ConceptID: uuid.New(),
			Amount:    dec("10.00"),
			DueDate:   f.today().AddDate(0, 0, -1),
		})

		assert.ErrorIs(t, err, shared.ErrValidation)
		f.receivables.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("zero amount", func(t *testing.T) {
		f := newFixture()
		svc := newReceivableServiceForTest(f)

		_, err := svc.Create(ctx, f.scope, CreateReceivableInput{StudentID: uuid.New(), ConceptID: uuid.New(), DueDate: f.today()})

		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestReceivableService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("amount is frozen by a pending payment", func(t *testing.T) {
		f := newFixture()
		svc := newReceivableServiceForTest(f)
		ar := f.receivable("500.00", "0")
		p := f.payment(ar, "50.00", finance.PaymentStatusPending)

		f.receivables.On("FindByIDForUpdate", mock.Anything, f.scope.TenantID, ar.ID).Return(ar, nil)
		f.payments.On("FindByReceivable", mock.Anything, f.scope.TenantID, ar.ID).Return([]finance.Payment{*p}, nil)

		amount := dec("600.00")
		_, err := svc.Update(ctx, f.scope, ar.ID, finance.ReceivableUpdate{Amount: &amount})

		assert.Error(t, err)
		f.receivables.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("description can change while pending", func(t *testing.T) {
		f := newFixture()
		svc := newReceivableServiceForTest(f)
		ar := f.receivable("500.00", "0")

		f.receivables.On("FindByIDForUpdate", mock.Anything, f.scope.TenantID, ar.ID).Return(ar, nil)
		f.payments.On("FindByReceivable", mock.Anything, f.scope.TenantID, ar.ID).Return([]finance.Payment{}, nil)
		f.receivables.On("SaveWithLock", mock.Anything, ar).Return(nil)

		desc := "Lab fee"
		resp, err := svc.Update(ctx, f.scope, ar.ID, finance.ReceivableUpdate{Description: &desc})

		require.NoError(t, err)
		assert.Equal(t, "Lab fee", resp.Description)
	})

	t.Run("paid receivable cannot be edited", func(t *testing.T) {
		f := newFixture()
		svc := newReceivableServiceForTest(f)
		ar := f.receivable("500.00", "500.00")

		f.receivables.On("FindByIDForUpdate", mock.Anything, f.scope.TenantID, ar.ID).Return(ar, nil)
		f.payments.On("FindByReceivable", mock.Anything, f.scope.TenantID, ar.ID).Return([]finance.Payment{}, nil)

		desc := "late edit"
		_, err := svc.Update(ctx, f.scope, ar.ID, finance.ReceivableUpdate{Description: &desc})

		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestReceivableService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked by any payment", func(t *testing.T) {
		f := newFixture()
		svc := newReceivableServiceForTest(f)
		ar := f.receivable("500.00", "0")

		f.receivables.On("FindByIDForUpdate", mock.Anything, f.scope.TenantID, ar.ID).Return(ar, nil)
		f.payments.On("CountByReceivable", mock.Anything, f.scope.TenantID, ar.ID).Return(int64(1), nil)

		err := svc.Delete(ctx, f.scope, ar.ID)

		assert.ErrorIs(t, err, shared.ErrConflict)
		f.receivables.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deletes without payments", func(t *testing.T) {
		f := newFixture()
		svc := newReceivableServiceForTest(f)
		ar := f.receivable("500.00", "0")

		f.receivables.On("FindByIDForUpdate", mock.Anything, f.scope.TenantID, ar.ID).Return(ar, nil)
		f.payments.On("CountByReceivable", mock.Anything, f.scope.TenantID, ar.ID).Return(int64(0), nil)
		f.receivables.On("DeleteForTenant", mock.Anything, f.scope.TenantID, ar.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, f.scope, ar.ID))
		f.assertExpectations(t)
	})

	t.Run("other tenant sees not found", func(t *testing.T) {
		f := newFixture()
		svc := newReceivableServiceForTest(f)
		other := shared.NewTenantScope(uuid.New(), uuid.New())
		id := uuid.New()
		f.receivables.On("FindByIDForUpdate", mock.Anything, other.TenantID, id).Return(nil, shared.NewNotFoundError("Receivable"))

		err := svc.Delete(ctx, other, id)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestReceivableService_RecomputeStatus(t *testing.T) {
	f := newFixture()
	svc := newReceivableServiceForTest(f)
	ar := f.receivable("500.00", "0")
	confirmed := f.payment(ar, "200.00", finance.PaymentStatusConfirmed)
	rejected := f.payment(ar, "100.00", finance.PaymentStatusRejected)

	f.receivables.On("FindByIDForUpdate", mock.Anything, f.scope.TenantID, ar.ID).Return(ar, nil)
	f.payments.On("FindByReceivable", mock.Anything, f.scope.TenantID, ar.ID).Return([]finance.Payment{*confirmed, *rejected}, nil)
	f.receivables.On("SaveWithLock", mock.Anything, ar).Return(nil).Once()

	first, err := svc.RecomputeStatus(context.Background(), f.scope, ar.ID)
	require.NoError(t, err)
	second, err := svc.RecomputeStatus(context.Background(), f.scope, ar.ID)
	require.NoError(t, err)

	assert.Equal(t, finance.ReceivableStatusPartial, first.Status)
	assert.Equal(t, first.Status, second.Status)
	assert.True(t, second.RemainingAmount.Equal(dec("300.00")))
	// the second run finds nothing to change and does not write
	f.receivables.AssertNumberOfCalls(t, "SaveWithLock", 1)
}

func TestReceivableService_Summarize(t *testing.T) {
	ctx := context.Background()

	t.Run("collection rate is paid over total", func(t *testing.T) {
		f := newFixture()
		svc := newReceivableServiceForTest(f)
		f.receivables.On("SummarizeByStatus", mock.Anything, f.scope.TenantID, mock.Anything).Return([]finance.ReceivableStatusTotal{
			{Status: finance.ReceivableStatusPending, Count: 2, Amount: dec("600"), PaidAmount: dec("0"), RemainingAmount: dec("600")},
			{Status: finance.ReceivableStatusPartial, Count: 1, Amount: dec("200"), PaidAmount: dec("50"), RemainingAmount: dec("150")},
			{Status: finance.ReceivableStatusPaid, Count: 1, Amount: dec("200"), PaidAmount: dec("200"), RemainingAmount: dec("0")},
		}, nil)

		summary, err := svc.Summarize(ctx, f.scope, finance.ReceivableFilter{})

		require.NoError(t, err)
		assert.Equal(t, int64(4), summary.Count)
		assert.True(t, summary.TotalAmount.Equal(dec("1000")))
		assert.True(t, summary.PaidAmount.Equal(dec("250")))
		assert.True(t, summary.RemainingAmount.Equal(dec("750")))
		assert.True(t, summary.CollectionRate.Equal(dec("0.25")))
		assert.Len(t, summary.Lines, 3)
	})

	t.Run("empty tenant has a zero rate", func(t *testing.T) {
		f := newFixture()
		svc := newReceivableServiceForTest(f)
		f.receivables.On("SummarizeByStatus", mock.Anything, f.scope.TenantID, mock.Anything).Return([]finance.ReceivableStatusTotal{}, nil)

		summary, err := svc.Summarize(ctx, f.scope, finance.ReceivableFilter{})

		require.NoError(t, err)
		assert.True(t, summary.CollectionRate.IsZero())
	})
}

func TestReceivableService_List(t *testing.T) {
	f := newFixture()
	svc := newReceivableServiceForTest(f)
	overdue := f.receivable("100.00", "40.00")
	overdue.DueDate = f.today().AddDate(0, 0, -45)

	f.receivables.On("FindAllForTenant", mock.Anything, f.scope.TenantID, mock.MatchedBy(func(filter finance.ReceivableFilter) bool {
		return filter.Page == 1 && filter.PageSize == 20
	})).Return([]finance.AccountReceivable{*overdue}, nil)
	f.receivables.On("CountForTenant", mock.Anything, f.scope.TenantID, mock.Anything).Return(int64(1), nil)

	page, err := svc.List(context.Background(), f.scope, finance.ReceivableFilter{})

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Total)
	assert.True(t, page.Items[0].IsOverdue)
	assert.Equal(t, 45, page.Items[0].DaysOverdue)
	assert.True(t, page.Items[0].PaidPercentage.Equal(dec("40")))
}
