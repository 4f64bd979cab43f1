package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// immutableColumns are never rewritten by a versioned update.
var immutableColumns = []string{"id", "tenant_id", "created_at", "created_by"}

// paginate applies LIMIT/OFFSET from a normalized filter.
func paginate(f shared.Filter) func(db *gorm.DB) *gorm.DB {
	f = f.Normalize()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(f.Offset()).Limit(f.PageSize)
	}
}

// forUpdate takes an exclusive row lock. SQLite ignores the clause.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// translateNotFound maps gorm.ErrRecordNotFound to a domain NotFound error.
func translateNotFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource)
	}
	return err
}

// updateVersioned writes every mutable column of model when the stored
// version is the one the aggregate was loaded with. Zero values are written
// too, so cleared timestamps and zero balances persist.
func updateVersioned(tx *gorm.DB, model any, id uuid.UUID, version int, resource string) error {
	omit := append([]string{clause.Associations}, immutableColumns...)
	result := tx.Model(model).
		Select("*").
		Omit(omit...).
		Where("id = ? AND version = ?", id, version-1).
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("update %s: %w", resource, result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func likePattern(s string) string {
	return "%" + s + "%"
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
