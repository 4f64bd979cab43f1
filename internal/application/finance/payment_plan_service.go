package finance

import (
	"context"
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

// PaymentPlanService manages installment plans
type PaymentPlanService struct {
	serviceBase
	planRepo       finance.PaymentPlanRepository
	receivableRepo finance.AccountReceivableRepository
}

// NewPaymentPlanService creates a new PaymentPlanService
func NewPaymentPlanService(
	planRepo finance.PaymentPlanRepository,
	receivableRepo finance.AccountReceivableRepository,
	txScope TransactionScope,
) *PaymentPlanService {
	return &PaymentPlanService{
		serviceBase:    newServiceBase(txScope),
		planRepo:       planRepo,
		receivableRepo: receivableRepo,
	}
}

// Create creates an Active plan with its generated schedule. A linked
// receivable must belong to the same student.
func (s *PaymentPlanService) Create(ctx context.Context, scope shared.TenantScope, in CreatePaymentPlanInput) (_ *PaymentPlanResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_plan", "create")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if in.ReceivableID != nil {
		ar, err := s.receivableRepo.FindByIDForTenant(ctx, scope.TenantID, *in.ReceivableID)
		if err != nil {
			return nil, err
		}
		if ar.StudentID != in.StudentID {
			return nil, shared.NewValidationError("RECEIVABLE_STUDENT_MISMATCH",
				"Receivable belongs to a different student")
		}
	}

	today := s.today()
	plan, err := finance.NewPaymentPlan(scope, in.StudentID, in.ReceivableID, in.TotalAmount,
		in.InstallmentCount, in.Frequency, in.StartDate, in.Description, today)
	if err != nil {
		return nil, err
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save payment plan: %w", err)
	}
	s.publish(ctx, drainEvents(plan))

	logger.L(ctx).Info("payment plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.String("student_id", plan.StudentID.String()),
		zap.String("total_amount", plan.TotalAmount.String()),
		zap.Int("installments", plan.InstallmentCount),
	)
	resp := ToPaymentPlanResponse(plan, today)
	return &resp, nil
}

// Update edits an Active plan without paid installments, regenerating the
// schedule when its terms change
func (s *PaymentPlanService) Update(ctx context.Context, scope shared.TenantScope, id uuid.UUID, upd finance.PlanUpdate) (_ *PaymentPlanResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_plan", "update")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	var regenerated bool
	resp, err := s.mutate(ctx, scope, id, func(plan *finance.PaymentPlan, now time.Time) error {
		var err error
		regenerated, err = plan.Update(upd, finance.DateOnly(now))
		return err
	})
	if err != nil {
		return nil, err
	}
	if regenerated {
		logger.L(ctx).Info("payment plan schedule regenerated",
			zap.String("plan_id", id.String()),
			zap.Int("installments", resp.InstallmentCount),
		)
	}
	return resp, nil
}

// Suspend pauses an Active plan
func (s *PaymentPlanService) Suspend(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (_ *PaymentPlanResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_plan", "suspend")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	return s.mutate(ctx, scope, id, func(plan *finance.PaymentPlan, now time.Time) error {
		return plan.Suspend(now)
	})
}

// Reactivate resumes a Suspended plan
func (s *PaymentPlanService) Reactivate(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (_ *PaymentPlanResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_plan", "reactivate")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	return s.mutate(ctx, scope, id, func(plan *finance.PaymentPlan, now time.Time) error {
		return plan.Reactivate(now)
	})
}

// Cancel ends the plan and cancels its pending installments
func (s *PaymentPlanService) Cancel(ctx context.Context, scope shared.TenantScope, id uuid.UUID, reason string) (_ *PaymentPlanResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_plan", "cancel")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	var cancelled int
	resp, err := s.mutate(ctx, scope, id, func(plan *finance.PaymentPlan, now time.Time) error {
		var err error
		cancelled, err = plan.Cancel(reason, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.L(ctx).Info("payment plan cancelled",
		zap.String("plan_id", id.String()),
		zap.Int("installments_cancelled", cancelled),
	)
	return resp, nil
}

// mutate locks the plan, applies fn and saves it with a version check
func (s *PaymentPlanService) mutate(ctx context.Context, scope shared.TenantScope, id uuid.UUID, fn func(*finance.PaymentPlan, time.Time) error) (*PaymentPlanResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	var plan *finance.PaymentPlan
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		plan, err = repos.Plans().FindByIDForUpdate(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		if err := fn(plan, now); err != nil {
			return err
		}
		return repos.Plans().SaveWithLock(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, drainEvents(plan))
	resp := ToPaymentPlanResponse(plan, finance.DateOnly(now))
	return &resp, nil
}

// PayInstallment settles one installment: it registers and confirms a payment
// for the installment amount against the receivable, links the payment and
// marks the installment Paid, all in one transaction.
func (s *PaymentPlanService) PayInstallment(ctx context.Context, scope shared.TenantScope, planID, installmentID uuid.UUID, in PayInstallmentInput) (_ *InstallmentPaymentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_plan", "pay_installment")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	today := finance.DateOnly(now)
	var (
		plan    *finance.PaymentPlan
		payment *finance.Payment
		ar      *finance.AccountReceivable
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		plan, err = repos.Plans().FindByIDForUpdate(ctx, scope.TenantID, planID)
		if err != nil {
			return err
		}
		inst, err := plan.PayableInstallment(installmentID)
		if err != nil {
			return err
		}

		receivableID := lo.FromPtrOr(in.ReceivableID, lo.FromPtr(plan.ReceivableID))
		if receivableID == uuid.Nil {
			return shared.NewValidationError("RECEIVABLE_REQUIRED",
				"A receivable is required to pay an installment of an unlinked plan")
		}
		if in.Amount != nil && !in.Amount.Equal(inst.Amount) {
			return shared.NewValidationError("INSTALLMENT_AMOUNT_MISMATCH",
				fmt.Sprintf("Payment amount must equal the installment amount %s", inst.Amount.StringFixed(finance.MoneyScale)))
		}

		payment, ar, err = registerPayment(ctx, repos, scope, RegisterPaymentInput{
			ReceivableID:    receivableID,
			Amount:          inst.Amount,
			PaymentDate:     in.PaymentDate,
			Method:          in.Method,
			ReferenceNumber: in.ReferenceNumber,
		}, today)
		if err != nil {
			return err
		}
		if ar.StudentID != plan.StudentID {
			return shared.NewValidationError("RECEIVABLE_STUDENT_MISMATCH",
				"Receivable belongs to a different student")
		}
		if err := confirmPayment(ctx, repos, scope, payment, ar, now); err != nil {
			return err
		}
		if err := plan.PayInstallment(installmentID, payment.ID, now); err != nil {
			return err
		}
		return repos.Plans().SaveWithLock(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, drainEvents(payment, ar, plan))

	logger.L(ctx).Info("installment paid",
		zap.String("plan_id", planID.String()),
		zap.String("installment_id", installmentID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("plan_status", string(plan.Status)),
	)
	return &InstallmentPaymentResponse{
		Plan:       ToPaymentPlanResponse(plan, today),
		Payment:    ToPaymentResponse(payment),
		Receivable: ToReceivableResponse(ar, today),
	}, nil
}

// Get returns one plan with its installments
func (s *PaymentPlanService) Get(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*PaymentPlanResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	plan, err := s.planRepo.FindByIDForTenant(ctx, scope.TenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentPlanResponse(plan, s.today())
	return &resp, nil
}

// List returns a page of plans matching the filter
func (s *PaymentPlanService) List(ctx context.Context, scope shared.TenantScope, filter finance.PaymentPlanFilter) (*shared.Paginated[PaymentPlanResponse], error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	filter.Filter = filter.Filter.Normalize()

	plans, err := s.planRepo.FindAllForTenant(ctx, scope.TenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment plans: %w", err)
	}
	total, err := s.planRepo.CountForTenant(ctx, scope.TenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count payment plans: %w", err)
	}
	today := s.today()
	items := lo.Map(plans, func(p finance.PaymentPlan, _ int) PaymentPlanResponse {
		return ToPaymentPlanResponse(&p, today)
	})
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}
