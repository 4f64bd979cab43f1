package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TenantLister lists the schools jobs fan out to
type TenantLister interface {
	TenantsWithActiveStudents(ctx context.Context) ([]uuid.UUID, error)
}

// JobSubmitter accepts jobs for execution
type JobSubmitter interface {
	SubmitJob(job *Job) error
}

// LedgerCron fires the ledger jobs on their cron schedules and fans each firing out
// to one job per tenant with active students. Schedules are evaluated in UTC.
type LedgerCron struct {
	cfg       config.SchedulerConfig
	tenants   TenantLister
	submitter JobSubmitter
	logger    *zap.Logger
	cron      *cron.Cron
	now       func() time.Time
	baseCtx   context.Context
}

// NewLedgerCron validates both schedules and registers them.
func NewLedgerCron(cfg config.SchedulerConfig, tenants TenantLister, submitter JobSubmitter, log *zap.Logger) (*LedgerCron, error) {
	c := &LedgerCron{
		cfg:       cfg,
		tenants:   tenants,
		submitter: submitter,
		logger:    log,
		now:       time.Now,
		baseCtx:   context.Background(),
	}
	c.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(zapCronLogger{log}),
		cron.WithChain(cron.Recover(zapCronLogger{log}), cron.SkipIfStillRunning(zapCronLogger{log})),
	)

	entries := []struct {
		spec string
		name JobName
	}{
		{cfg.OverdueCronSchedule, JobOverdueSweep},
		{cfg.MonthlyInvoiceSchedule, JobMonthlyInvoices},
	}
	for _, e := range entries {
		name := e.name
		if _, err := c.cron.AddFunc(e.spec, func() { c.fire(name) }); err != nil {
			return nil, fmt.Errorf("%w: %s schedule %q: %v", ErrInvalidConfig, name, e.spec, err)
		}
	}
	return c, nil
}

// ValidateSchedule reports whether spec is a standard five-field cron expression
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Start begins firing jobs. ctx bounds the tenant lookups done on each firing.
func (c *LedgerCron) Start(ctx context.Context) {
	c.baseCtx = ctx
	c.cron.Start()
	for _, entry := range c.cron.Entries() {
		c.logger.Info("Ledger job scheduled", zap.Time("next_run", entry.Next))
	}
}

// Stop halts the cron and waits for in-flight fan-outs
func (c *LedgerCron) Stop(ctx context.Context) error {
	select {
	case <-c.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Trigger fans a job out to every tenant now, for the period containing the current time.
// It returns the number of jobs submitted.
func (c *LedgerCron) Trigger(ctx context.Context, name JobName) (int, error) {
	period, err := c.periodFor(name, c.now().UTC())
	if err != nil {
		return 0, err
	}
	tenants, err := c.tenants.TenantsWithActiveStudents(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tenants: %w", err)
	}

	submitted := 0
	for _, tenantID := range tenants {
		job := NewJob(name, tenantID, period, c.cfg.RetryAttempts)
		if err := c.submitter.SubmitJob(job); err != nil {
			c.logger.Error("Failed to submit job",
				zap.String("job", string(name)),
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		submitted++
	}
	c.logger.Info("Ledger job fanned out",
		zap.String("job", string(name)),
		zap.String("period", period),
		zap.Int("tenants", len(tenants)),
		zap.Int("submitted", submitted),
	)
	return submitted, nil
}

func (c *LedgerCron) fire(name JobName) {
	ctx, cancel := context.WithTimeout(c.baseCtx, time.Minute)
	defer cancel()
	if _, err := c.Trigger(ctx, name); err != nil {
		c.logger.Error("Ledger job fan-out failed", zap.String("job", string(name)), zap.Error(err))
	}
}

func (c *LedgerCron) periodFor(name JobName, now time.Time) (string, error) {
	switch name {
	case JobOverdueSweep:
		return now.Format(time.DateOnly), nil
	case JobMonthlyInvoices:
		return finance.PeriodOf(now).String(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
}

// zapCronLogger adapts zap to cron.Logger
type zapCronLogger struct {
	l *zap.Logger
}

func (z zapCronLogger) Info(msg string, keysAndValues ...any) {
	z.l.Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (z zapCronLogger) Error(err error, msg string, keysAndValues ...any) {
	z.l.Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
