package scheduler

import (
	"context"
	"fmt"
	"time"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/campusledger/backend/internal/infrastructure/logger"
	"github.com/campusledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceJobs is the slice of the invoice service the jobs drive
type InvoiceJobs interface {
	UpdateOverdueInvoices(ctx context.Context, scope shared.TenantScope) (int, error)
	GenerateMonthlyInvoices(ctx context.Context, scope shared.TenantScope, period finance.BillingPeriod) (*appfinance.GenerationReport, error)
}

// JobRecorder receives one observation per executed job
type JobRecorder interface {
	RecordJob(ctx context.Context, job string, started time.Time, items int, err error)
}

// LedgerExecutor runs the overdue sweep and monthly invoice generation for one tenant.
// Each run first claims its run-once key; a replica that loses the claim skips the run.
type LedgerExecutor struct {
	invoices   InvoiceJobs
	store      shared.IdempotencyStore
	runOnceTTL time.Duration
	recorder   JobRecorder
	logger     *zap.Logger
}

// NewLedgerExecutor creates the executor. recorder may be nil.
func NewLedgerExecutor(invoices InvoiceJobs, store shared.IdempotencyStore, runOnceTTL time.Duration, recorder JobRecorder, log *zap.Logger) *LedgerExecutor {
	if runOnceTTL <= 0 {
		runOnceTTL = 36 * time.Hour
	}
	return &LedgerExecutor{
		invoices:   invoices,
		store:      store,
		runOnceTTL: runOnceTTL,
		recorder:   recorder,
		logger:     log,
	}
}

// Execute implements JobExecutor
func (e *LedgerExecutor) Execute(ctx context.Context, job *Job) error {
	key := job.RunKey()
	claimed, err := e.store.MarkProcessed(ctx, key, e.runOnceTTL)
	if err != nil {
		return fmt.Errorf("failed to claim run key %s: %w", key, err)
	}
	if !claimed {
		e.logger.Info("Job already ran for period, skipping",
			zap.String("job", string(job.Name)),
			zap.String("tenant_id", job.TenantID.String()),
			zap.String("period", job.Period),
		)
		return nil
	}

	ctx = logger.WithTenantID(logger.WithContext(ctx, e.logger), job.TenantID.String())
	started := time.Now()
	var items int
	telemetry.WithProfilingLabels(ctx, map[string]string{"job": string(job.Name)}, func(ctx context.Context) {
		items, err = e.run(ctx, job)
	})
	if e.recorder != nil {
		e.recorder.RecordJob(ctx, string(job.Name), started, items, err)
	}

	if err != nil {
		if relErr := e.store.Release(context.WithoutCancel(ctx), key); relErr != nil {
			e.logger.Warn("Failed to release run key", zap.String("key", key), zap.Error(relErr))
		}
		return err
	}
	return nil
}

func (e *LedgerExecutor) run(ctx context.Context, job *Job) (int, error) {
	// Jobs act as the system: no operator is recorded on what they touch.
	scope := shared.NewTenantScope(job.TenantID, uuid.Nil)
	switch job.Name {
	case JobOverdueSweep:
		return e.invoices.UpdateOverdueInvoices(ctx, scope)
	case JobMonthlyInvoices:
		period, err := finance.ParseBillingPeriod(job.Period)
		if err != nil {
			return 0, err
		}
		report, err := e.invoices.GenerateMonthlyInvoices(ctx, scope, period)
		if err != nil {
			return 0, err
		}
		logger.L(ctx).Info("monthly invoices generated",
			zap.String("period", period.String()),
			zap.Int("created", report.Created),
			zap.Int("updated", report.Updated),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed),
		)
		items := report.Created + report.Updated
		if report.Failed > 0 {
			// Generation is idempotent per student, so a retry only redoes the failures.
			return items, fmt.Errorf("%w: %d of %d students failed for %s",
				ErrIncompleteRun, report.Failed, len(report.Results), period)
		}
		return items, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownJob, job.Name)
	}
}
