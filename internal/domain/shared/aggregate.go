package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity holds the identity and timestamps of a ledger record
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch bumps the update timestamp
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}

// BaseAggregateRoot carries the optimistic-lock version and the events raised
// since the aggregate was loaded. Version starts at 1 and repositories reject
// a save whose version no longer matches the stored row.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

// AddDomainEvent queues an event for publication after commit
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.pending = nil }

// TenantAggregateRoot is an aggregate owned by exactly one school
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID  uuid.UUID
	CreatedBy *uuid.UUID
}

// NewTenantAggregateRoot starts a new aggregate in the scope's school. The
// scope's actor is recorded as creator; scheduled jobs act with no actor.
func NewTenantAggregateRoot(scope TenantScope) TenantAggregateRoot {
	now := time.Now().UTC()
	root := TenantAggregateRoot{
		BaseAggregateRoot: BaseAggregateRoot{
			BaseEntity: BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			Version:    1,
		},
		TenantID: scope.TenantID,
	}
	if scope.ActorID != uuid.Nil {
		actor := scope.ActorID
		root.CreatedBy = &actor
	}
	return root
}

// RestoreTenantAggregateRoot rebuilds a stored aggregate root without raising events
func RestoreTenantAggregateRoot(id, tenantID uuid.UUID, createdBy *uuid.UUID, createdAt, updatedAt time.Time, version int) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseAggregateRoot: BaseAggregateRoot{
			BaseEntity: BaseEntity{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt},
			Version:    version,
		},
		TenantID:  tenantID,
		CreatedBy: createdBy,
	}
}

// BelongsTo reports whether the aggregate is owned by the scope's school
func (t *TenantAggregateRoot) BelongsTo(scope TenantScope) bool {
	return t.TenantID == scope.TenantID
}
