package finance

import (
	"context"
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountReceivableRepository is a mock implementation of AccountReceivableRepository
type MockAccountReceivableRepository struct {
	mock.Mock
}

func (m *MockAccountReceivableRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.AccountReceivable, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.AccountReceivable), args.Error(1)
}

func (m *MockAccountReceivableRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.AccountReceivable, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.AccountReceivable), args.Error(1)
}

func (m *MockAccountReceivableRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.ReceivableFilter) ([]finance.AccountReceivable, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.AccountReceivable), args.Error(1)
}

func (m *MockAccountReceivableRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.ReceivableFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountReceivableRepository) FindOutstanding(ctx context.Context, tenantID uuid.UUID) ([]finance.AccountReceivable, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]finance.AccountReceivable), args.Error(1)
}

func (m *MockAccountReceivableRepository) Save(ctx context.Context, receivable *finance.AccountReceivable) error {
	args := m.Called(ctx, receivable)
	return args.Error(0)
}

func (m *MockAccountReceivableRepository) SaveWithLock(ctx context.Context, receivable *finance.AccountReceivable) error {
	args := m.Called(ctx, receivable)
	return args.Error(0)
}

func (m *MockAccountReceivableRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockAccountReceivableRepository) SummarizeByStatus(ctx context.Context, tenantID uuid.UUID, filter finance.ReceivableFilter) ([]finance.ReceivableStatusTotal, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.ReceivableStatusTotal), args.Error(1)
}

func (m *MockAccountReceivableRepository) SumCreatedByMonth(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]finance.MonthlyAmount, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]finance.MonthlyAmount), args.Error(1)
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
// FindByReceivable also accepts a func() []finance.Payment return so a test can
// observe payments changed earlier in the same call.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) ([]finance.Payment, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) FindByReceivable(ctx context.Context, tenantID, receivableID uuid.UUID) ([]finance.Payment, error) {
	args := m.Called(ctx, tenantID, receivableID)
	if fn, ok := args.Get(0).(func() []finance.Payment); ok {
		return fn(), args.Error(1)
	}
	return args.Get(0).([]finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountByReceivable(ctx context.Context, tenantID, receivableID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, receivableID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, payment *finance.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SumConfirmedByMonth(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]finance.MonthlyAmount, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]finance.MonthlyAmount), args.Error(1)
}

func (m *MockPaymentRepository) SumConfirmedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) BreakdownByMethod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]finance.MethodTotal, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]finance.MethodTotal), args.Error(1)
}

// MockPaymentPlanRepository is a mock implementation of PaymentPlanRepository
type MockPaymentPlanRepository struct {
	mock.Mock
}

func (m *MockPaymentPlanRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.PaymentPlan, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.PaymentPlan), args.Error(1)
}

func (m *MockPaymentPlanRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.PaymentPlan, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.PaymentPlan), args.Error(1)
}

func (m *MockPaymentPlanRepository) FindByPaymentIDForUpdate(ctx context.Context, tenantID, paymentID uuid.UUID) (*finance.PaymentPlan, error) {
	args := m.Called(ctx, tenantID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.PaymentPlan), args.Error(1)
}

func (m *MockPaymentPlanRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentPlanFilter) ([]finance.PaymentPlan, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.PaymentPlan), args.Error(1)
}

func (m *MockPaymentPlanRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentPlanFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentPlanRepository) Save(ctx context.Context, plan *finance.PaymentPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPaymentPlanRepository) SaveWithLock(ctx context.Context, plan *finance.PaymentPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPaymentPlanRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[finance.PlanStatus]int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(map[finance.PlanStatus]int64), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByStudentAndPeriod(ctx context.Context, tenantID, studentID uuid.UUID, period finance.BillingPeriod) (*finance.Invoice, error) {
	args := m.Called(ctx, tenantID, studentID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.InvoiceFilter) ([]finance.Invoice, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) FindOverdueCandidateIDs(ctx context.Context, tenantID uuid.UUID, today time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, today)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *finance.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *finance.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID, period finance.BillingPeriod) (string, error) {
	args := m.Called(ctx, tenantID, period)
	return args.String(0), args.Error(1)
}

// MockStudentDirectory is a mock implementation of StudentDirectory
type MockStudentDirectory struct {
	mock.Mock
}

func (m *MockStudentDirectory) GetStudent(ctx context.Context, tenantID, studentID uuid.UUID) (*Student, error) {
	args := m.Called(ctx, tenantID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Student), args.Error(1)
}

func (m *MockStudentDirectory) ListActiveStudents(ctx context.Context, tenantID uuid.UUID) ([]Student, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]Student), args.Error(1)
}

func (m *MockStudentDirectory) TenantsWithActiveStudents(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockFeeCatalog is a mock implementation of FeeCatalog
type MockFeeCatalog struct {
	mock.Mock
}

func (m *MockFeeCatalog) BillableItems(ctx context.Context, tenantID, studentID uuid.UUID, period finance.BillingPeriod) ([]finance.BillableItem, error) {
	args := m.Called(ctx, tenantID, studentID, period)
	return args.Get(0).([]finance.BillableItem), args.Error(1)
}

// MockFileStorage is a mock implementation of FileStorage
type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Put(ctx context.Context, file VoucherFile) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

func (m *MockFileStorage) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

// MockNotificationDispatcher is a mock implementation of NotificationDispatcher
type MockNotificationDispatcher struct {
	mock.Mock
}

func (m *MockNotificationDispatcher) Dispatch(ctx context.Context, n Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

// fixture bundles the mocks behind a NoOpTransactionScope
type fixture struct {
	receivables *MockAccountReceivableRepository
	payments    *MockPaymentRepository
	plans       *MockPaymentPlanRepository
	invoices    *MockInvoiceRepository
	txScope     *NoOpTransactionScope
	scope       shared.TenantScope
	now         time.Time
}

func newFixture() *fixture {
	f := &fixture{
		receivables: new(MockAccountReceivableRepository),
		payments:    new(MockPaymentRepository),
		plans:       new(MockPaymentPlanRepository),
		invoices:    new(MockInvoiceRepository),
		scope:       shared.NewTenantScope(uuid.New(), uuid.New()),
		now:         time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
	}
	f.txScope = NewNoOpTransactionScope(f.receivables, f.payments, f.plans, f.invoices)
	return f
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) today() time.Time { return finance.DateOnly(f.now) }

func (f *fixture) assertExpectations(t mock.TestingT) {
	f.receivables.AssertExpectations(t)
	f.payments.AssertExpectations(t)
	f.plans.AssertExpectations(t)
	f.invoices.AssertExpectations(t)
}

// receivable builds a stored receivable due in 30 days with the given settled amount
func (f *fixture) receivable(amount, paid string) *finance.AccountReceivable {
	ar, err := finance.NewAccountReceivable(f.scope, uuid.New(), uuid.New(), dec(amount),
		f.today().AddDate(0, 0, 30), "Tuition", f.today())
	if err != nil {
		panic(err)
	}
	if _, err := ar.Recompute(dec(paid), f.now); err != nil {
		panic(err)
	}
	ar.ClearDomainEvents()
	return ar
}

func (f *fixture) payment(ar *finance.AccountReceivable, amount string, status finance.PaymentStatus) *finance.Payment {
	p, err := finance.NewPayment(f.scope, ar, dec(amount), f.today(), finance.PaymentMethodCash, "", f.today())
	if err != nil {
		panic(err)
	}
	p.Status = status
	p.ClearDomainEvents()
	return p
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
