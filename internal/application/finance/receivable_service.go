package finance

import (
	"context"
	"fmt"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/campusledger/backend/internal/infrastructure/logger"
	"github.com/campusledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReceivableService manages account receivables. Settlement figures are never
// written here directly; they come from recomputeReceivable.
type ReceivableService struct {
	serviceBase
	receivableRepo finance.AccountReceivableRepository
	paymentRepo    finance.PaymentRepository
}

// NewReceivableService creates a new ReceivableService
func NewReceivableService(
	receivableRepo finance.AccountReceivableRepository,
	paymentRepo finance.PaymentRepository,
	txScope TransactionScope,
) *ReceivableService {
	return &ReceivableService{
		serviceBase:    newServiceBase(txScope),
		receivableRepo: receivableRepo,
		paymentRepo:    paymentRepo,
	}
}

// Create creates a Pending receivable
func (s *ReceivableService) Create(ctx context.Context, scope shared.TenantScope, in CreateReceivableInput) (_ *ReceivableResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receivable", "create")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return nil, err
	}
	today := s.today()
	ar, err := finance.NewAccountReceivable(scope, in.StudentID, in.ConceptID, in.Amount, in.DueDate, in.Description, today)
	if err != nil {
		return nil, err
	}
	if err := s.receivableRepo.Save(ctx, ar); err != nil {
		return nil, fmt.Errorf("failed to save receivable: %w", err)
	}
	s.publish(ctx, drainEvents(ar))

	logger.L(ctx).Info("receivable created",
		zap.String("receivable_id", ar.ID.String()),
		zap.String("student_id", ar.StudentID.String()),
		zap.String("amount", ar.Amount.String()),
	)
	resp := ToReceivableResponse(ar, today)
	return &resp, nil
}

// Get returns one receivable of the tenant
func (s *ReceivableService) Get(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*ReceivableResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	ar, err := s.receivableRepo.FindByIDForTenant(ctx, scope.TenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToReceivableResponse(ar, s.today())
	return &resp, nil
}

// List returns a page of receivables matching the filter
func (s *ReceivableService) List(ctx context.Context, scope shared.TenantScope, filter finance.ReceivableFilter) (*shared.Paginated[ReceivableResponse], error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	filter.Filter = filter.Filter.Normalize()

	receivables, err := s.receivableRepo.FindAllForTenant(ctx, scope.TenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list receivables: %w", err)
	}
	total, err := s.receivableRepo.CountForTenant(ctx, scope.TenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count receivables: %w", err)
	}

	today := s.today()
	items := lo.Map(receivables, func(ar finance.AccountReceivable, _ int) ReceivableResponse {
		return ToReceivableResponse(&ar, today)
	})
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update changes amount, due date or description. The amount is frozen once a
// Pending or Confirmed payment exists.
func (s *ReceivableService) Update(ctx context.Context, scope shared.TenantScope, id uuid.UUID, upd finance.ReceivableUpdate) (_ *ReceivableResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receivable", "update")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return nil, err
	}
	today := s.today()
	var ar *finance.AccountReceivable
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		ar, err = repos.Receivables().FindByIDForUpdate(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		payments, err := repos.Payments().FindByReceivable(ctx, scope.TenantID, id)
		if err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}
		if err := ar.Update(upd, finance.HasActivePayments(payments), today); err != nil {
			return err
		}
		return repos.Receivables().SaveWithLock(ctx, ar)
	})
	if err != nil {
		return nil, err
	}
	resp := ToReceivableResponse(ar, today)
	return &resp, nil
}

// Delete removes a receivable that has never had a payment
func (s *ReceivableService) Delete(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receivable", "delete")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return err
	}
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ar, err := repos.Receivables().FindByIDForUpdate(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		count, err := repos.Payments().CountByReceivable(ctx, scope.TenantID, id)
		if err != nil {
			return fmt.Errorf("failed to count payments: %w", err)
		}
		if err := ar.CanDelete(count); err != nil {
			return err
		}
		return repos.Receivables().DeleteForTenant(ctx, scope.TenantID, id)
	})
	if err != nil {
		return err
	}
	logger.L(ctx).Info("receivable deleted", zap.String("receivable_id", id.String()))
	return nil
}

// RecomputeStatus re-derives the settlement figures from confirmed payments.
// Calling it again without new payments changes nothing.
func (s *ReceivableService) RecomputeStatus(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (_ *ReceivableResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receivable", "recompute_status")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	var ar *finance.AccountReceivable
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		ar, err = repos.Receivables().FindByIDForUpdate(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		return recomputeReceivable(ctx, repos, ar, now)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, drainEvents(ar))
	resp := ToReceivableResponse(ar, finance.DateOnly(now))
	return &resp, nil
}

// Summarize groups the filtered receivables by status
func (s *ReceivableService) Summarize(ctx context.Context, scope shared.TenantScope, filter finance.ReceivableFilter) (*ReceivableSummary, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	totals, err := s.receivableRepo.SummarizeByStatus(ctx, scope.TenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize receivables: %w", err)
	}

	summary := &ReceivableSummary{
		Lines: lo.Map(totals, func(t finance.ReceivableStatusTotal, _ int) ReceivableStatusLine {
			return ReceivableStatusLine(t)
		}),
	}
	for _, t := range totals {
		summary.Count += t.Count
		summary.TotalAmount = summary.TotalAmount.Add(t.Amount)
		summary.PaidAmount = summary.PaidAmount.Add(t.PaidAmount)
		summary.RemainingAmount = summary.RemainingAmount.Add(t.RemainingAmount)
	}
	summary.CollectionRate = ratio(summary.PaidAmount, summary.TotalAmount)
	return summary, nil
}

// ratio returns part/whole rounded to 4 places, 0 when whole is 0
func ratio(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.DivRound(whole, 4)
}
