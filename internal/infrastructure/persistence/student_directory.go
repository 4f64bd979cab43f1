package persistence

import (
	"context"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/infrastructure/persistence/models"
	"github.com/campusledger/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

const studentResource = "student"

// GormStudentDirectory reads the local students table
type GormStudentDirectory struct {
	db *gorm.DB
}

// NewGormStudentDirectory creates a new GormStudentDirectory
func NewGormStudentDirectory(db *gorm.DB) *GormStudentDirectory {
	return &GormStudentDirectory{db: db}
}

// GetStudent returns one student of the tenant
func (d *GormStudentDirectory) GetStudent(ctx context.Context, tenantID, studentID uuid.UUID) (*appfinance.Student, error) {
	var model models.StudentModel
	if err := d.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", studentID).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err, studentResource)
	}
	student := toStudent(model)
	return &student, nil
}

// ListActiveStudents returns the active students of a tenant ordered by name
func (d *GormStudentDirectory) ListActiveStudents(ctx context.Context, tenantID uuid.UUID) ([]appfinance.Student, error) {
	var rows []models.StudentModel
	if err := d.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("active = ?", true).
		Order("full_name ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return lo.Map(rows, func(m models.StudentModel, _ int) appfinance.Student { return toStudent(m) }), nil
}

// TenantsWithActiveStudents lists every school with at least one active student
func (d *GormStudentDirectory) TenantsWithActiveStudents(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := d.db.WithContext(ctx).
		Model(&models.StudentModel{}).
		Where("active = ?", true).
		Distinct("tenant_id").
		Order("tenant_id").
		Pluck("tenant_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func toStudent(m models.StudentModel) appfinance.Student {
	return appfinance.Student{
		ID:            m.ID,
		TenantID:      m.TenantID,
		FullName:      m.FullName,
		GuardianPhone: m.GuardianPhone,
		Active:        m.Active,
	}
}

var _ appfinance.StudentDirectory = (*GormStudentDirectory)(nil)
