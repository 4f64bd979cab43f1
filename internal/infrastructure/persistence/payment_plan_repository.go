package persistence

import (
	"context"
	"fmt"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/infrastructure/persistence/models"
	"github.com/campusledger/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const paymentPlanResource = "payment plan"

// GormPaymentPlanRepository implements finance.PaymentPlanRepository using GORM.
// Installments are stored in their own table and always travel with the plan.
type GormPaymentPlanRepository struct {
	db *gorm.DB
}

// NewGormPaymentPlanRepository creates a new GormPaymentPlanRepository
func NewGormPaymentPlanRepository(db *gorm.DB) *GormPaymentPlanRepository {
	return &GormPaymentPlanRepository{db: db}
}

func preloadInstallments(db *gorm.DB) *gorm.DB {
	return db.Preload("Installments", func(db *gorm.DB) *gorm.DB {
		return db.Order("number ASC")
	})
}

// FindByIDForTenant loads a plan with its installments ordered by number
func (r *GormPaymentPlanRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.PaymentPlan, error) {
	return r.find(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate loads a plan holding a row lock on the plan
func (r *GormPaymentPlanRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.PaymentPlan, error) {
	return r.find(r.db.WithContext(ctx).Scopes(forUpdate), tenantID, id)
}

// FindByPaymentIDForUpdate locks the plan whose installment references paymentID
func (r *GormPaymentPlanRepository) FindByPaymentIDForUpdate(ctx context.Context, tenantID, paymentID uuid.UUID) (*finance.PaymentPlan, error) {
	db := r.db.WithContext(ctx)
	planIDs := db.Model(&models.PaymentPlanInstallmentModel{}).
		Select("plan_id").
		Where("payment_id = ?", paymentID)

	var model models.PaymentPlanModel
	if err := db.Scopes(forUpdate, tenant.Scope(tenantID), preloadInstallments).
		Where("id IN (?)", planIDs).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err, paymentPlanResource)
	}
	return model.ToDomain(), nil
}

func (r *GormPaymentPlanRepository) find(db *gorm.DB, tenantID, id uuid.UUID) (*finance.PaymentPlan, error) {
	var model models.PaymentPlanModel
	if err := db.Scopes(tenant.Scope(tenantID), preloadInstallments).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err, paymentPlanResource)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists plans with their installments
func (r *GormPaymentPlanRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentPlanFilter) ([]finance.PaymentPlan, error) {
	var rows []models.PaymentPlanModel
	if err := r.filtered(ctx, tenantID, filter).
		Scopes(preloadInstallments, paginate(filter.Filter)).
		Order(orderClause(filter.OrderBy, filter.OrderDir, PaymentPlanSortFields, "created_at")).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return lo.Map(rows, func(m models.PaymentPlanModel, _ int) finance.PaymentPlan {
		return *m.ToDomain()
	}), nil
}

// CountForTenant counts plans matching filter
func (r *GormPaymentPlanRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentPlanFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts a new plan and its installments
func (r *GormPaymentPlanRepository) Save(ctx context.Context, plan *finance.PaymentPlan) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(models.PaymentPlanModelFromDomain(plan)).Error; err != nil {
		return fmt.Errorf("create payment plan: %w", err)
	}
	if len(plan.Installments) == 0 {
		return nil
	}
	rows := lo.Map(plan.Installments, func(i finance.PaymentPlanInstallment, _ int) models.PaymentPlanInstallmentModel {
		return models.InstallmentModelFromDomain(i)
	})
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("create installments: %w", err)
	}
	return nil
}

// SaveWithLock updates the plan with a version check, drops installments that
// are no longer part of the plan and upserts the rest.
func (r *GormPaymentPlanRepository) SaveWithLock(ctx context.Context, plan *finance.PaymentPlan) error {
	db := r.db.WithContext(ctx)
	model := models.PaymentPlanModelFromDomain(plan)
	if err := updateVersioned(db, model, plan.ID, plan.Version, paymentPlanResource); err != nil {
		return err
	}

	keep := lo.Map(plan.Installments, func(i finance.PaymentPlanInstallment, _ int) uuid.UUID { return i.ID })
	stale := db.Where("plan_id = ?", plan.ID)
	if len(keep) > 0 {
		stale = stale.Where("id NOT IN ?", keep)
	}
	if err := stale.Delete(&models.PaymentPlanInstallmentModel{}).Error; err != nil {
		return fmt.Errorf("delete stale installments: %w", err)
	}

	for _, inst := range plan.Installments {
		row := models.InstallmentModelFromDomain(inst)
		if err := db.Save(&row).Error; err != nil {
			return fmt.Errorf("save installment %d: %w", inst.Number, err)
		}
	}
	return nil
}

// CountByStatus counts plans per status
func (r *GormPaymentPlanRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[finance.PlanStatus]int64, error) {
	var rows []planStatusCount
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentPlanModel{}).
		Scopes(tenant.Scope(tenantID)).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return lo.SliceToMap(rows, func(row planStatusCount) (finance.PlanStatus, int64) {
		return row.Status, row.Count
	}), nil
}

type planStatusCount struct {
	Status finance.PlanStatus
	Count  int64
}

func (r *GormPaymentPlanRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentPlanFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.PaymentPlanModel{}).
		Scopes(tenant.Scope(tenantID))

	if filter.Search != "" {
		query = query.Where("LOWER(description) LIKE ?", likePattern(lowerTrim(filter.Search)))
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Frequency != nil {
		query = query.Where("frequency = ?", *filter.Frequency)
	}
	return query
}
