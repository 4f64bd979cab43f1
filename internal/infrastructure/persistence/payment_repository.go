package persistence

import (
	"context"
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/infrastructure/persistence/models"
	"github.com/campusledger/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const paymentResource = "payment"

// GormPaymentRepository implements finance.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByIDForTenant finds a payment by ID for a specific tenant
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err, paymentResource)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists payments matching filter
func (r *GormPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) ([]finance.Payment, error) {
	var rows []models.PaymentModel
	if err := r.filtered(ctx, tenantID, filter).
		Order(orderClause(filter.OrderBy, filter.OrderDir, PaymentSortFields, "created_at")).
		Scopes(paginate(filter.Filter)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(rows), nil
}

// CountForTenant counts payments matching filter
func (r *GormPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByReceivable returns every payment of a receivable in registration order
func (r *GormPaymentRepository) FindByReceivable(ctx context.Context, tenantID, receivableID uuid.UUID) ([]finance.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("receivable_id = ?", receivableID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(rows), nil
}

// CountByReceivable counts payments of a receivable in any status
func (r *GormPaymentRepository) CountByReceivable(ctx context.Context, tenantID, receivableID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("receivable_id = ?", receivableID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts a new payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	return r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error
}

// SaveWithLock updates a payment with a version check
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, payment *finance.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return updateVersioned(r.db.WithContext(ctx), model, payment.ID, payment.Version, paymentResource)
}

// SumConfirmedByMonth totals confirmed payments per payment-date month in [from, to)
func (r *GormPaymentRepository) SumConfirmedByMonth(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]finance.MonthlyAmount, error) {
	var rows []datedAmount
	if err := r.confirmedBetween(ctx, tenantID, from, to).
		Select("payment_date AS at, amount").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return bucketByMonth(rows), nil
}

// SumConfirmedBetween totals confirmed payments with payment date in [from, to)
func (r *GormPaymentRepository) SumConfirmedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.confirmedBetween(ctx, tenantID, from, to).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// BreakdownByMethod groups confirmed payments with payment date in [from, to) by method
func (r *GormPaymentRepository) BreakdownByMethod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]finance.MethodTotal, error) {
	var rows []struct {
		Method finance.PaymentMethod
		Count  int64
		Amount decimal.Decimal
	}
	if err := r.confirmedBetween(ctx, tenantID, from, to).
		Select("method, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("method").
		Order("method").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	totals := make([]finance.MethodTotal, len(rows))
	for i, row := range rows {
		totals[i] = finance.MethodTotal(row)
	}
	return totals, nil
}

func (r *GormPaymentRepository) confirmedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("status = ? AND payment_date >= ? AND payment_date < ?",
			finance.PaymentStatusConfirmed, finance.DateOnly(from), finance.DateOnly(to))
}

func (r *GormPaymentRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Scopes(tenant.Scope(tenantID))

	if filter.Search != "" {
		pattern := likePattern(lowerTrim(filter.Search))
		query = query.Where("LOWER(reference_number) LIKE ? OR LOWER(rejection_reason) LIKE ?", pattern, pattern)
	}
	if filter.ReceivableID != nil {
		query = query.Where("receivable_id = ?", *filter.ReceivableID)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}
	if filter.DateFrom != nil {
		query = query.Where("payment_date >= ?", finance.DateOnly(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		query = query.Where("payment_date <= ?", finance.DateOnly(*filter.DateTo))
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}
	return query
}

func paymentsToDomain(rows []models.PaymentModel) []finance.Payment {
	return lo.Map(rows, func(m models.PaymentModel, _ int) finance.Payment {
		return *m.ToDomain()
	})
}
