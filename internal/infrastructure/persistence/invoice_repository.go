package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/campusledger/backend/internal/infrastructure/persistence/models"
	"github.com/campusledger/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const invoiceResource = "invoice"

// GormInvoiceRepository implements finance.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindByIDForTenant finds an invoice with its items
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id), tenantID)
}

// FindByIDForUpdate finds an invoice holding a row lock on it
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	return r.first(r.db.WithContext(ctx).Scopes(forUpdate).Where("id = ?", id), tenantID)
}

// FindByStudentAndPeriod returns the invoice of a student for one period
func (r *GormInvoiceRepository) FindByStudentAndPeriod(ctx context.Context, tenantID, studentID uuid.UUID, period finance.BillingPeriod) (*finance.Invoice, error) {
	return r.first(r.db.WithContext(ctx).Where("student_id = ? AND period = ?", studentID, period), tenantID)
}

func (r *GormInvoiceRepository) first(db *gorm.DB, tenantID uuid.UUID) (*finance.Invoice, error) {
	var model models.InvoiceModel
	if err := db.Scopes(tenant.Scope(tenantID), preloadItems).First(&model).Error; err != nil {
		return nil, translateNotFound(err, invoiceResource)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists invoices with their items
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.InvoiceFilter) ([]finance.Invoice, error) {
	var rows []models.InvoiceModel
	if err := r.filtered(ctx, tenantID, filter).
		Scopes(preloadItems, paginate(filter.Filter)).
		Order(orderClause(filter.OrderBy, filter.OrderDir, InvoiceSortFields, "created_at")).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return lo.Map(rows, func(m models.InvoiceModel, _ int) finance.Invoice {
		return *m.ToDomain()
	}), nil
}

// CountForTenant counts invoices matching filter
func (r *GormInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.InvoiceFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindOverdueCandidateIDs lists Pending invoices due before today
func (r *GormInvoiceRepository) FindOverdueCandidateIDs(ctx context.Context, tenantID uuid.UUID, today time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("status = ? AND due_date < ?", finance.InvoiceStatusPending, finance.DateOnly(today)).
		Order("due_date ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Save inserts a new invoice and its items
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *finance.Invoice) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(models.InvoiceModelFromDomain(invoice)).Error; err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	if len(invoice.Items) == 0 {
		return nil
	}
	items := itemRows(invoice)
	if err := db.Create(&items).Error; err != nil {
		return fmt.Errorf("create invoice items: %w", err)
	}
	return nil
}

// SaveWithLock updates an invoice with a version check and rewrites its items
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *finance.Invoice) error {
	db := r.db.WithContext(ctx)
	model := models.InvoiceModelFromDomain(invoice)
	if err := updateVersioned(db, model, invoice.ID, invoice.Version, invoiceResource); err != nil {
		return err
	}

	keep := lo.Map(invoice.Items, func(it finance.InvoiceItem, _ int) uuid.UUID { return it.ID })
	stale := db.Where("invoice_id = ?", invoice.ID)
	if len(keep) > 0 {
		stale = stale.Where("id NOT IN ?", keep)
	}
	if err := stale.Delete(&models.InvoiceItemModel{}).Error; err != nil {
		return fmt.Errorf("delete stale invoice items: %w", err)
	}
	for _, row := range itemRows(invoice) {
		if err := db.Save(&row).Error; err != nil {
			return fmt.Errorf("save invoice item: %w", err)
		}
	}
	return nil
}

// DeleteForTenant removes an invoice and its items
func (r *GormInvoiceRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	result := db.Scopes(tenant.Scope(tenantID)).Where("id = ?", id).Delete(&models.InvoiceModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError(invoiceResource)
	}
	return db.Where("invoice_id = ?", id).Delete(&models.InvoiceItemModel{}).Error
}

// NextInvoiceNumber allocates the next INV-YYYYMM-NNNNN of the period. The
// sequence widens past five digits, so numbers are ordered by length first.
// The (tenant_id, invoice_number) unique index rejects a number taken by a
// concurrent writer.
func (r *GormInvoiceRepository) NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID, period finance.BillingPeriod) (string, error) {
	prefix := finance.InvoiceNumberPrefix(period)
	var latest []string
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("invoice_number LIKE ?", prefix+"%").
		Order("LENGTH(invoice_number) DESC, invoice_number DESC").
		Limit(1).
		Pluck("invoice_number", &latest).Error; err != nil {
		return "", err
	}

	next := 1
	if len(latest) > 0 {
		seq, err := strconv.Atoi(strings.TrimPrefix(latest[0], prefix))
		if err != nil {
			return "", fmt.Errorf("parse invoice number %q: %w", latest[0], err)
		}
		next = seq + 1
	}
	return finance.FormatInvoiceNumber(period, next), nil
}

func (r *GormInvoiceRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter finance.InvoiceFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(tenant.Scope(tenantID))

	if filter.Search != "" {
		pattern := likePattern(lowerTrim(filter.Search))
		query = query.Where("LOWER(invoice_number) LIKE ? OR LOWER(notes) LIKE ?", pattern, pattern)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Period != nil {
		query = query.Where("period = ?", *filter.Period)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", finance.DateOnly(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", finance.DateOnly(*filter.DueTo))
	}
	if filter.MinTotal != nil {
		query = query.Where("total >= ?", *filter.MinTotal)
	}
	if filter.MaxTotal != nil {
		query = query.Where("total <= ?", *filter.MaxTotal)
	}
	return query
}

func itemRows(invoice *finance.Invoice) []models.InvoiceItemModel {
	return lo.Map(invoice.Items, func(it finance.InvoiceItem, i int) models.InvoiceItemModel {
		row := models.InvoiceItemModelFromDomain(it)
		row.Position = i
		return row
	})
}
