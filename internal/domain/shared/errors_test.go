package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_IsMatchesKind(t *testing.T) {
	err := NewValidationError("INVALID_AMOUNT", "Amount must be positive")

	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Amount must be positive", err.Error())
}

func TestDomainError_IsMatchesCode(t *testing.T) {
	err := NewConflictError("RECEIVABLE_PAID", "Receivable is already paid")

	assert.ErrorIs(t, err, NewConflictError("RECEIVABLE_PAID", ""))
	assert.NotErrorIs(t, err, NewConflictError("HAS_PAYMENTS", ""))
}

func TestDomainError_WrappedStillMatches(t *testing.T) {
	wrapped := fmt.Errorf("register payment: %w", NewNotFoundError("Receivable"))

	assert.ErrorIs(t, wrapped, ErrNotFound)

	var domainErr *DomainError
	require.True(t, errors.As(wrapped, &domainErr))
	assert.Equal(t, KindNotFound, domainErr.Kind)
	assert.Equal(t, "Receivable not found", domainErr.Message)
}

func TestConcurrencyConflictIsConflict(t *testing.T) {
	assert.ErrorIs(t, ErrConcurrencyConflict, ErrConflict)
}

func TestTenantScope_Validate(t *testing.T) {
	t.Run("missing tenant is a validation error", func(t *testing.T) {
		err := TenantScope{ActorID: uuid.New()}.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("tenant present", func(t *testing.T) {
		assert.NoError(t, NewTenantScope(uuid.New(), uuid.Nil).Validate())
	})

	t.Run("system actor has no creator", func(t *testing.T) {
		scope := NewTenantScope(uuid.New(), uuid.Nil)
		assert.Nil(t, scope.Actor())
		root := NewTenantAggregateRoot(scope)
		assert.Nil(t, root.CreatedBy)
		assert.True(t, root.BelongsTo(scope))
	})

	t.Run("actor recorded as creator", func(t *testing.T) {
		scope := NewTenantScope(uuid.New(), uuid.New())
		root := NewTenantAggregateRoot(scope)
		require.NotNil(t, root.CreatedBy)
		assert.Equal(t, scope.ActorID, *root.CreatedBy)
		assert.Equal(t, 1, root.Version)
		assert.False(t, root.BelongsTo(NewTenantScope(uuid.New(), scope.ActorID)))
	})
}

func TestNewPaginated(t *testing.T) {
	page := NewPaginated([]int{1, 2, 3}, 41, 2, 20)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(41), page.Total)

	f := Filter{Page: 0, PageSize: 500}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 100, f.PageSize)
}
