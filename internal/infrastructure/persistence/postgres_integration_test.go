//go:build integration

package persistence

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/campusledger/backend/internal/infrastructure/migration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupPostgresLedger starts a throwaway PostgreSQL, applies migrations/ and
// returns a pooled GORM handle.
func setupPostgresLedger(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(20)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, filepath.Join("..", "..", "..", "migrations"), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	state, err := m.State()
	require.NoError(t, err)
	require.False(t, state.Dirty)

	return db
}

func registerConcurrently(t *testing.T, svc settlementServices, scope shared.TenantScope, receivableID uuid.UUID, amount string, n int) []error {
	t.Helper()
	start := make(chan struct{})
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.payments.Register(context.Background(), scope, appfinance.RegisterPaymentInput{
				ReceivableID: receivableID,
				Amount:       money(amount),
				Method:       finance.PaymentMethodBankTransfer,
			})
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func TestPostgres_ConcurrentRegistrationsShareTheBalance(t *testing.T) {
	db := setupPostgresLedger(t)
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

	errs := registerConcurrently(t, svc, scope, ar.ID, "80.00", 2)

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, shared.ErrValidation)
	}
	assert.Equal(t, 1, succeeded)

	payments, err := NewGormPaymentRepository(db).FindByReceivable(ctx, scope.TenantID, ar.ID)
	require.NoError(t, err)
	pending := finance.SumPayments(payments, finance.PaymentStatusPending)
	assert.True(t, pending.Equal(money("80")), "pending total %s", pending)
}

func TestPostgres_ManySmallRegistrationsNeverOverdraw(t *testing.T) {
	db := setupPostgresLedger(t)
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

	errs := registerConcurrently(t, svc, scope, ar.ID, "15.00", 10)

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 6, succeeded)

	count, err := NewGormPaymentRepository(db).CountByReceivable(ctx, scope.TenantID, ar.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)
}

func TestPostgres_InvoiceNumberIsUniquePerTenant(t *testing.T) {
	db := setupPostgresLedger(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	scope := testScope()
	period, err := finance.ParseBillingPeriod("2024-03")
	require.NoError(t, err)

	first, err := finance.NewInvoice(scope, uuid.New(), period, "INV-202403-00001", period.DueDate(10))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	clash, err := finance.NewInvoice(scope, uuid.New(), period, "INV-202403-00001", period.DueDate(10))
	require.NoError(t, err)
	assert.Error(t, repo.Save(ctx, clash))
}
