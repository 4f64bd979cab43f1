package persistence

import (
	"context"
	"slices"
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/campusledger/backend/internal/infrastructure/persistence/models"
	"github.com/campusledger/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const receivableResource = "account receivable"

var outstandingReceivableStatuses = []finance.ReceivableStatus{
	finance.ReceivableStatusPending,
	finance.ReceivableStatusPartial,
}

// GormAccountReceivableRepository implements finance.AccountReceivableRepository using GORM
type GormAccountReceivableRepository struct {
	db *gorm.DB
}

// NewGormAccountReceivableRepository creates a new GormAccountReceivableRepository
func NewGormAccountReceivableRepository(db *gorm.DB) *GormAccountReceivableRepository {
	return &GormAccountReceivableRepository{db: db}
}

// FindByIDForTenant finds a receivable by ID for a specific tenant
func (r *GormAccountReceivableRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.AccountReceivable, error) {
	return r.find(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds a receivable and locks its row until the transaction ends
func (r *GormAccountReceivableRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.AccountReceivable, error) {
	return r.find(r.db.WithContext(ctx).Scopes(forUpdate), tenantID, id)
}

func (r *GormAccountReceivableRepository) find(db *gorm.DB, tenantID, id uuid.UUID) (*finance.AccountReceivable, error) {
	var model models.AccountReceivableModel
	if err := db.Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err, receivableResource)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists receivables matching filter, one page at a time
func (r *GormAccountReceivableRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.ReceivableFilter) ([]finance.AccountReceivable, error) {
	var rows []models.AccountReceivableModel
	query := r.filtered(ctx, tenantID, filter).
		Order(orderClause(filter.OrderBy, filter.OrderDir, ReceivableSortFields, "created_at")).
		Scopes(paginate(filter.Filter))
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return receivablesToDomain(rows), nil
}

// CountForTenant counts receivables matching filter
func (r *GormAccountReceivableRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.ReceivableFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindOutstanding returns every Pending or Partial receivable of the tenant, oldest due first
func (r *GormAccountReceivableRepository) FindOutstanding(ctx context.Context, tenantID uuid.UUID) ([]finance.AccountReceivable, error) {
	var rows []models.AccountReceivableModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("status IN ?", outstandingReceivableStatuses).
		Order("due_date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return receivablesToDomain(rows), nil
}

// Save inserts a new receivable
func (r *GormAccountReceivableRepository) Save(ctx context.Context, receivable *finance.AccountReceivable) error {
	model := models.AccountReceivableModelFromDomain(receivable)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveWithLock updates a receivable when nobody else changed it since it was loaded
func (r *GormAccountReceivableRepository) SaveWithLock(ctx context.Context, receivable *finance.AccountReceivable) error {
	model := models.AccountReceivableModelFromDomain(receivable)
	return updateVersioned(r.db.WithContext(ctx), model, receivable.ID, receivable.Version, receivableResource)
}

// DeleteForTenant removes a receivable of the tenant
func (r *GormAccountReceivableRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		Delete(&models.AccountReceivableModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError(receivableResource)
	}
	return nil
}

// SummarizeByStatus groups the filtered receivables by status
func (r *GormAccountReceivableRepository) SummarizeByStatus(ctx context.Context, tenantID uuid.UUID, filter finance.ReceivableFilter) ([]finance.ReceivableStatusTotal, error) {
	var rows []struct {
		Status          finance.ReceivableStatus
		Count           int64
		Amount          decimal.Decimal
		PaidAmount      decimal.Decimal
		RemainingAmount decimal.Decimal
	}
	if err := r.filtered(ctx, tenantID, filter).
		Select(`status,
			COUNT(*) AS count,
			COALESCE(SUM(amount), 0) AS amount,
			COALESCE(SUM(paid_amount), 0) AS paid_amount,
			COALESCE(SUM(remaining_amount), 0) AS remaining_amount`).
		Group("status").
		Order("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	totals := make([]finance.ReceivableStatusTotal, len(rows))
	for i, row := range rows {
		totals[i] = finance.ReceivableStatusTotal(row)
	}
	return totals, nil
}

// SumCreatedByMonth totals receivables created per month in [from, to).
// Month bucketing happens in Go so the query stays portable between
// PostgreSQL and SQLite.
func (r *GormAccountReceivableRepository) SumCreatedByMonth(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]finance.MonthlyAmount, error) {
	var rows []datedAmount
	if err := r.db.WithContext(ctx).
		Model(&models.AccountReceivableModel{}).
		Scopes(tenant.Scope(tenantID)).
		Select("created_at AS at, amount").
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return bucketByMonth(rows), nil
}

func (r *GormAccountReceivableRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter finance.ReceivableFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.AccountReceivableModel{}).
		Scopes(tenant.Scope(tenantID))

	if filter.Search != "" {
		query = query.Where("LOWER(description) LIKE ?", likePattern(lowerTrim(filter.Search)))
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.ConceptID != nil {
		query = query.Where("concept_id = ?", *filter.ConceptID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", finance.DateOnly(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", finance.DateOnly(*filter.DueTo))
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}
	if filter.OverdueAsOf != nil {
		query = query.Where("due_date < ? AND status IN ?", finance.DateOnly(*filter.OverdueAsOf), outstandingReceivableStatuses)
	}
	return query
}

func receivablesToDomain(rows []models.AccountReceivableModel) []finance.AccountReceivable {
	return lo.Map(rows, func(m models.AccountReceivableModel, _ int) finance.AccountReceivable {
		return *m.ToDomain()
	})
}

// datedAmount is one (timestamp, amount) row used for monthly bucketing.
type datedAmount struct {
	At     time.Time
	Amount decimal.Decimal
}

func bucketByMonth(rows []datedAmount) []finance.MonthlyAmount {
	groups := lo.GroupBy(rows, func(row datedAmount) string {
		return row.At.UTC().Format("2006-01")
	})
	months := lo.Keys(groups)
	slices.Sort(months)
	return lo.Map(months, func(month string, _ int) finance.MonthlyAmount {
		group := groups[month]
		return finance.MonthlyAmount{
			Month:  month,
			Count:  int64(len(group)),
			Amount: lo.Reduce(group, func(acc decimal.Decimal, row datedAmount, _ int) decimal.Decimal { return acc.Add(row.Amount) }, decimal.Zero),
		}
	})
}
