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

// AllowedVoucherTypes is the content type whitelist for voucher uploads.
// SVG is excluded, it can carry scripts.
var AllowedVoucherTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/heic":      true,
	"application/pdf": true,
}

// PaymentServiceConfig holds configuration for the payment service
type PaymentServiceConfig struct {
	MaxVoucherBytes int64
}

// DefaultPaymentServiceConfig returns the default configuration
func DefaultPaymentServiceConfig() PaymentServiceConfig {
	return PaymentServiceConfig{MaxVoucherBytes: 5 << 20}
}

// PaymentService registers payments and drives them through their lifecycle.
// Every transition that can move the settled amount recomputes the receivable
// in the same transaction.
type PaymentService struct {
	serviceBase
	paymentRepo finance.PaymentRepository
	storage     FileStorage
	config      PaymentServiceConfig
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo finance.PaymentRepository,
	storage FileStorage,
	txScope TransactionScope,
) *PaymentService {
	return &PaymentService{
		serviceBase: newServiceBase(txScope),
		paymentRepo: paymentRepo,
		storage:     storage,
		config:      DefaultPaymentServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *PaymentService) SetConfig(config PaymentServiceConfig) {
	if config.MaxVoucherBytes <= 0 {
		config.MaxVoucherBytes = DefaultPaymentServiceConfig().MaxVoucherBytes
	}
	s.config = config
}

// Register creates a Pending payment. The balance check and the insert happen
// under the receivable row lock, so two concurrent registrations cannot both
// fit into the same remaining balance.
func (s *PaymentService) Register(ctx context.Context, scope shared.TenantScope, in RegisterPaymentInput) (_ *SettlementResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "register")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return nil, err
	}
	today := s.today()
	var (
		payment *finance.Payment
		ar      *finance.AccountReceivable
	)
	telemetry.WithProfilingLabels(ctx, map[string]string{"operation": "payment.register", "method": string(in.Method)}, func(ctx context.Context) {
		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			payment, ar, err = registerPayment(ctx, repos, scope, in, today)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, drainEvents(payment, ar))

	logger.L(ctx).Info("payment registered",
		zap.String("payment_id", payment.ID.String()),
		zap.String("receivable_id", ar.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("method", string(payment.Method)),
	)
	return &SettlementResponse{
		Payment:    ToPaymentResponse(payment),
		Receivable: ToReceivableResponse(ar, today),
	}, nil
}

// Update edits a Pending payment. A changed amount is checked again against
// the balance left by the other pending payments.
func (s *PaymentService) Update(ctx context.Context, scope shared.TenantScope, id uuid.UUID, upd finance.PaymentUpdate) (_ *PaymentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "update")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return nil, err
	}
	today := s.today()
	var payment *finance.Payment
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.Payments().FindByIDForTenant(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		previousAmount := payment.Amount
		if err := payment.Update(upd, today); err != nil {
			return err
		}
		if !payment.Amount.Equal(previousAmount) {
			ar, err := repos.Receivables().FindByIDForUpdate(ctx, scope.TenantID, payment.ReceivableID)
			if err != nil {
				return err
			}
			pendingOthers, err := pendingTotalExcept(ctx, repos, scope.TenantID, ar.ID, payment.ID)
			if err != nil {
				return err
			}
			if err := ar.AcceptPayment(payment.Amount, pendingOthers); err != nil {
				return err
			}
			if err := repos.Receivables().SaveWithLock(ctx, ar); err != nil {
				return err
			}
		}
		return repos.Payments().SaveWithLock(ctx, payment)
	})
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// Confirm moves a Pending payment to Confirmed and settles it on the receivable
func (s *PaymentService) Confirm(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (_ *SettlementResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "confirm")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	return s.transition(ctx, scope, id, func(repos TransactionalRepositories, p *finance.Payment, ar *finance.AccountReceivable, now time.Time) error {
		return confirmPayment(ctx, repos, scope, p, ar, now)
	})
}

// Reject moves a Pending payment to Rejected. Nothing was settled, so the
// receivable is left as is.
func (s *PaymentService) Reject(ctx context.Context, scope shared.TenantScope, id uuid.UUID, reason string) (_ *SettlementResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "reject")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	return s.transition(ctx, scope, id, func(repos TransactionalRepositories, p *finance.Payment, _ *finance.AccountReceivable, now time.Time) error {
		if err := p.Reject(reason, now); err != nil {
			return err
		}
		return repos.Payments().SaveWithLock(ctx, p)
	})
}

// Cancel cancels a payment in any other status. Cancelling a Confirmed payment
// reverses it on the receivable and reopens the plan installment it settled.
func (s *PaymentService) Cancel(ctx context.Context, scope shared.TenantScope, id uuid.UUID, reason string) (_ *SettlementResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "cancel")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	var plan *finance.PaymentPlan
	resp, err := s.transition(ctx, scope, id, func(repos TransactionalRepositories, p *finance.Payment, ar *finance.AccountReceivable, now time.Time) error {
		wasConfirmed := p.Status == finance.PaymentStatusConfirmed
		if err := p.Cancel(reason, now); err != nil {
			return err
		}
		if err := repos.Payments().SaveWithLock(ctx, p); err != nil {
			return err
		}
		if err := recomputeReceivable(ctx, repos, ar, now); err != nil {
			return err
		}
		if !wasConfirmed {
			return nil
		}
		reopened, err := reopenInstallment(ctx, repos, scope, p.ID, now)
		plan = reopened
		return err
	})
	if err != nil {
		return nil, err
	}
	if plan != nil {
		s.publish(ctx, drainEvents(plan))
		logger.L(ctx).Info("installment reopened",
			zap.String("plan_id", plan.ID.String()),
			zap.String("payment_id", id.String()),
			zap.String("plan_status", string(plan.Status)),
		)
	}
	return resp, nil
}

type paymentTransition func(repos TransactionalRepositories, p *finance.Payment, ar *finance.AccountReceivable, now time.Time) error

// transition loads the payment, locks its receivable and applies fn in one
// transaction. Events are published after commit.
func (s *PaymentService) transition(ctx context.Context, scope shared.TenantScope, id uuid.UUID, fn paymentTransition) (*SettlementResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	var (
		payment *finance.Payment
		ar      *finance.AccountReceivable
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.Payments().FindByIDForTenant(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		ar, err = repos.Receivables().FindByIDForUpdate(ctx, scope.TenantID, payment.ReceivableID)
		if err != nil {
			return err
		}
		return fn(repos, payment, ar, now)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, drainEvents(payment, ar))

	logger.L(ctx).Info("payment status changed",
		zap.String("payment_id", payment.ID.String()),
		zap.String("status", string(payment.Status)),
		zap.String("receivable_status", string(ar.Status)),
	)
	return &SettlementResponse{
		Payment:    ToPaymentResponse(payment),
		Receivable: ToReceivableResponse(ar, finance.DateOnly(now)),
	}, nil
}

// Get returns one payment of the tenant
func (s *PaymentService) Get(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*PaymentResponse, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	p, err := s.paymentRepo.FindByIDForTenant(ctx, scope.TenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(p)
	return &resp, nil
}

// List returns a page of payments matching the filter
func (s *PaymentService) List(ctx context.Context, scope shared.TenantScope, filter finance.PaymentFilter) (*shared.Paginated[PaymentResponse], error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	filter.Filter = filter.Filter.Normalize()

	payments, err := s.paymentRepo.FindAllForTenant(ctx, scope.TenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	total, err := s.paymentRepo.CountForTenant(ctx, scope.TenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}
	items := lo.Map(payments, func(p finance.Payment, _ int) PaymentResponse {
		return ToPaymentResponse(&p)
	})
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// AttachVoucher stores the voucher bytes and records the returned reference on
// the payment. The object is removed again if the payment cannot be saved.
func (s *PaymentService) AttachVoucher(ctx context.Context, scope shared.TenantScope, id uuid.UUID, upload VoucherUpload) (_ *PaymentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "attach_voucher")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateVoucher(upload); err != nil {
		return nil, err
	}

	current, err := s.paymentRepo.FindByIDForTenant(ctx, scope.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.IsActive() {
		return nil, shared.NewInvalidStateError("PAYMENT_NOT_ACTIVE",
			fmt.Sprintf("Cannot attach a voucher to payment in %s status", current.Status))
	}

	ref, err := s.storage.Put(ctx, VoucherFile{
		TenantID:    scope.TenantID,
		PaymentID:   id,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		Data:        upload.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store voucher: %w", err)
	}

	var payment *finance.Payment
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.Payments().FindByIDForTenant(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		if err := payment.AttachVoucher(ref); err != nil {
			return err
		}
		return repos.Payments().SaveWithLock(ctx, payment)
	})
	if err != nil {
		if delErr := s.storage.Delete(ctx, ref); delErr != nil {
			logger.L(ctx).Warn("failed to remove orphaned voucher",
				zap.String("voucher_ref", ref),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	logger.L(ctx).Info("voucher attached",
		zap.String("payment_id", id.String()),
		zap.String("voucher_ref", ref),
		zap.Int("size", len(upload.Data)),
	)
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

func (s *PaymentService) validateVoucher(upload VoucherUpload) error {
	if len(upload.Data) == 0 {
		return shared.NewValidationError("INVALID_VOUCHER", "Voucher file is empty")
	}
	if int64(len(upload.Data)) > s.config.MaxVoucherBytes {
		return shared.NewValidationError("VOUCHER_TOO_LARGE",
			fmt.Sprintf("Voucher exceeds the maximum size of %d bytes", s.config.MaxVoucherBytes))
	}
	if !AllowedVoucherTypes[upload.ContentType] {
		return shared.NewValidationError("INVALID_VOUCHER_TYPE",
			fmt.Sprintf("Content type %q is not allowed for vouchers", upload.ContentType))
	}
	return nil
}
