package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/campusledger/backend/internal/infrastructure/logger"
	"github.com/campusledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// InvoiceServiceConfig holds configuration for invoice generation
type InvoiceServiceConfig struct {
	// DueDay is the day of the billing month an invoice falls due
	DueDay int
	// AutoIssue issues invoices created by the monthly run right away
	AutoIssue bool
}

// DefaultInvoiceServiceConfig returns the default configuration
func DefaultInvoiceServiceConfig() InvoiceServiceConfig {
	return InvoiceServiceConfig{DueDay: 10, AutoIssue: true}
}

// InvoiceService builds invoices from the fee catalog and drives their lifecycle
type InvoiceService struct {
	serviceBase
	invoiceRepo finance.InvoiceRepository
	students    StudentDirectory
	catalog     FeeCatalog
	config      InvoiceServiceConfig
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo finance.InvoiceRepository,
	students StudentDirectory,
	catalog FeeCatalog,
	txScope TransactionScope,
) *InvoiceService {
	return &InvoiceService{
		serviceBase: newServiceBase(txScope),
		invoiceRepo: invoiceRepo,
		students:    students,
		catalog:     catalog,
		config:      DefaultInvoiceServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *InvoiceService) SetConfig(config InvoiceServiceConfig) {
	if config.DueDay < 1 {
		config.DueDay = DefaultInvoiceServiceConfig().DueDay
	}
	s.config = config
}

// GenerateStudentInvoice builds the invoice of one student for a period. A
// second call for the same period refreshes the items of the existing Draft or
// Pending invoice instead of creating another one. New invoices stay Draft.
func (s *InvoiceService) GenerateStudentInvoice(ctx context.Context, scope shared.TenantScope, studentID uuid.UUID, period finance.BillingPeriod) (_ *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "generate_student")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if _, err := finance.ParseBillingPeriod(string(period)); err != nil {
		return nil, err
	}
	student, err := s.students.GetStudent(ctx, scope.TenantID, studentID)
	if err != nil {
		return nil, err
	}
	if !student.Active {
		return nil, shared.NewInvalidStateError("STUDENT_INACTIVE", "Cannot invoice an inactive student")
	}

	inv, outcome, err := s.generate(ctx, scope, studentID, period, false)
	if err != nil {
		return nil, err
	}
	logger.L(ctx).Info("student invoice generated",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("student_id", studentID.String()),
		zap.String("period", string(period)),
		zap.String("outcome", string(outcome)),
	)
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// GenerateMonthlyInvoices generates the period invoice of every active student
// of the tenant, one transaction per student. A failing student is reported in
// its result line and never stops the run.
func (s *InvoiceService) GenerateMonthlyInvoices(ctx context.Context, scope shared.TenantScope, period finance.BillingPeriod) (_ *GenerationReport, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "generate_monthly")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if _, err := finance.ParseBillingPeriod(string(period)); err != nil {
		return nil, err
	}
	students, err := s.students.ListActiveStudents(ctx, scope.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active students: %w", err)
	}

	report := &GenerationReport{Period: period, Results: make([]GenerationResult, 0, len(students))}
	telemetry.WithProfilingLabels(ctx, map[string]string{"operation": "invoice.generate_monthly"}, func(ctx context.Context) {
		for _, student := range students {
			report.Results = append(report.Results, s.generateForReport(ctx, scope, student.ID, period))
		}
	})

	counts := lo.CountValuesBy(report.Results, func(r GenerationResult) GenerationOutcome { return r.Outcome })
	report.Created = counts[GenerationCreated]
	report.Updated = counts[GenerationUpdated]
	report.Skipped = counts[GenerationSkipped] + counts[GenerationUnchanged]
	report.Failed = counts[GenerationFailed]

	logger.L(ctx).Info("monthly invoices generated",
		zap.String("period", string(period)),
		zap.Int("students", len(students)),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *InvoiceService) generateForReport(ctx context.Context, scope shared.TenantScope, studentID uuid.UUID, period finance.BillingPeriod) GenerationResult {
	result := GenerationResult{StudentID: studentID}
	inv, outcome, err := s.generate(ctx, scope, studentID, period, s.config.AutoIssue)
	if err != nil {
		var domainErr *shared.DomainError
		switch {
		case errors.As(err, &domainErr) && domainErr.Code == codeNoBillableItems:
			result.Outcome = GenerationSkipped
		default:
			result.Outcome = GenerationFailed
			logger.L(ctx).Warn("invoice generation failed for student",
				zap.String("student_id", studentID.String()),
				zap.String("period", string(period)),
				zap.Error(err),
			)
		}
		result.ErrorCode, result.Error = errorCode(err), err.Error()
		return result
	}
	id := inv.ID
	result.InvoiceID = &id
	result.InvoiceNumber = inv.InvoiceNumber
	result.Outcome = outcome
	return result
}

const codeNoBillableItems = "NO_BILLABLE_ITEMS"

func noBillableItems(period finance.BillingPeriod) error {
	return shared.NewInvalidStateError(codeNoBillableItems,
		fmt.Sprintf("Student has no billable items for %s", period))
}

// generate creates or refreshes one invoice in its own transaction
func (s *InvoiceService) generate(ctx context.Context, scope shared.TenantScope, studentID uuid.UUID, period finance.BillingPeriod, issue bool) (*finance.Invoice, GenerationOutcome, error) {
	items, err := s.catalog.BillableItems(ctx, scope.TenantID, studentID, period)
	if err != nil {
		return nil, GenerationFailed, fmt.Errorf("failed to load billable items: %w", err)
	}

	now := s.now()
	var (
		inv     *finance.Invoice
		outcome GenerationOutcome
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.Invoices().FindByStudentAndPeriod(ctx, scope.TenantID, studentID, period)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			inv, err = s.createInvoice(ctx, repos, scope, studentID, period, items, issue, now)
			outcome = GenerationCreated
			return err
		case err != nil:
			return err
		}

		inv, err = repos.Invoices().FindByIDForUpdate(ctx, scope.TenantID, existing.ID)
		if err != nil {
			return err
		}
		if inv.Status != finance.InvoiceStatusDraft && inv.Status != finance.InvoiceStatusPending {
			outcome = GenerationUnchanged
			return nil
		}
		if len(items) == 0 {
			return noBillableItems(period)
		}
		if err := inv.ReplaceItems(items); err != nil {
			return err
		}
		if err := repos.Invoices().SaveWithLock(ctx, inv); err != nil {
			return err
		}
		outcome = GenerationUpdated
		if issue && inv.Status == finance.InvoiceStatusDraft && len(inv.Items) > 0 {
			if err := inv.Issue(now); err != nil {
				return err
			}
			return repos.Invoices().SaveWithLock(ctx, inv)
		}
		return nil
	})
	if err != nil {
		return nil, GenerationFailed, err
	}
	s.publish(ctx, drainEvents(inv))
	return inv, outcome, nil
}

func (s *InvoiceService) createInvoice(
	ctx context.Context,
	repos TransactionalRepositories,
	scope shared.TenantScope,
	studentID uuid.UUID,
	period finance.BillingPeriod,
	items []finance.BillableItem,
	issue bool,
	now time.Time,
) (*finance.Invoice, error) {
	if len(items) == 0 {
		return nil, noBillableItems(period)
	}
	number, err := repos.Invoices().NextInvoiceNumber(ctx, scope.TenantID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	inv, err := finance.NewInvoice(scope, studentID, period, number, period.DueDate(s.config.DueDay))
	if err != nil {
		return nil, err
	}
	if err := inv.ReplaceItems(items); err != nil {
		return nil, err
	}
	if issue {
		if err := inv.Issue(now); err != nil {
			return nil, err
		}
	}
	if err := repos.Invoices().Save(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}
	return inv, nil
}

// UpdateOverdueInvoices moves every Pending invoice past its due date to
// Overdue, one transaction per invoice, and returns how many moved.
func (s *InvoiceService) UpdateOverdueInvoices(ctx context.Context, scope shared.TenantScope) (_ int, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "update_overdue")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return 0, err
	}
	today := s.today()
	ids, err := s.invoiceRepo.FindOverdueCandidateIDs(ctx, scope.TenantID, today)
	if err != nil {
		return 0, fmt.Errorf("failed to find overdue invoices: %w", err)
	}

	updated := 0
	for _, id := range ids {
		_, err := s.mutate(ctx, scope, id, func(inv *finance.Invoice, now time.Time) error {
			return inv.MarkOverdue(today, now)
		})
		if err != nil {
			// Paid or cancelled since the candidate query; the next sweep sees the new state.
			logger.L(ctx).Warn("failed to mark invoice overdue",
				zap.String("invoice_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		updated++
	}

	logger.L(ctx).Info("overdue sweep finished",
		zap.Int("candidates", len(ids)),
		zap.Int("updated", updated),
	)
	return updated, nil
}

// Issue moves a Draft invoice to Pending
func (s *InvoiceService) Issue(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (_ *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "issue")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	return s.mutate(ctx, scope, id, func(inv *finance.Invoice, now time.Time) error {
		return inv.Issue(now)
	})
}

// MarkAsPaid moves a Pending invoice to Paid
func (s *InvoiceService) MarkAsPaid(ctx context.Context, scope shared.TenantScope, id uuid.UUID, reference string) (_ *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "mark_as_paid")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	return s.mutate(ctx, scope, id, func(inv *finance.Invoice, now time.Time) error {
		return inv.MarkAsPaid(reference, now)
	})
}

// Cancel moves a Pending or Overdue invoice to Cancelled
func (s *InvoiceService) Cancel(ctx context.Context, scope shared.TenantScope, id uuid.UUID, reason string) (_ *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "cancel")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	return s.mutate(ctx, scope, id, func(inv *finance.Invoice, now time.Time) error {
		return inv.Cancel(reason, now)
	})
}

func (s *InvoiceService) mutate(ctx context.Context, scope shared.TenantScope, id uuid.UUID, fn func(*finance.Invoice, time.Time) error) (*InvoiceResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	var inv *finance.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = repos.Invoices().FindByIDForUpdate(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		if err := fn(inv, now); err != nil {
			return err
		}
		return repos.Invoices().SaveWithLock(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, drainEvents(inv))
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Delete removes an invoice that is not Paid
func (s *InvoiceService) Delete(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "delete")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return err
	}
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByIDForUpdate(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		if err := inv.CanDelete(); err != nil {
			return err
		}
		return repos.Invoices().DeleteForTenant(ctx, scope.TenantID, id)
	})
}

// Get returns one invoice with its items
func (s *InvoiceService) Get(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*InvoiceResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, scope.TenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// List returns a page of invoices matching the filter
func (s *InvoiceService) List(ctx context.Context, scope shared.TenantScope, filter finance.InvoiceFilter) (*shared.Paginated[InvoiceResponse], error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	filter.Filter = filter.Filter.Normalize()

	invoices, err := s.invoiceRepo.FindAllForTenant(ctx, scope.TenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	total, err := s.invoiceRepo.CountForTenant(ctx, scope.TenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}
	items := lo.Map(invoices, func(inv finance.Invoice, _ int) InvoiceResponse {
		return ToInvoiceResponse(&inv)
	})
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// errorCode returns the stable code of a domain error, ERR_INTERNAL otherwise
func errorCode(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "ERR_INTERNAL"
}
