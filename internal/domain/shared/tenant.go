package shared

import (
	"github.com/google/uuid"
)

// TenantScope is the explicit handle every ledger operation receives. It names the
// school whose data may be touched and the operator acting on its behalf. Nothing in
// the ledger reads the tenant from ambient state.
type TenantScope struct {
	TenantID uuid.UUID
	ActorID  uuid.UUID
}

// NewTenantScope builds a scope for a tenant and an acting operator
func NewTenantScope(tenantID, actorID uuid.UUID) TenantScope {
	return TenantScope{TenantID: tenantID, ActorID: actorID}
}

// Validate rejects a scope without a tenant
func (s TenantScope) Validate() error {
	if s.TenantID == uuid.Nil {
		return ErrTenantRequired
	}
	return nil
}

// Actor returns a pointer to the actor id, nil for system operations
func (s TenantScope) Actor() *uuid.UUID {
	if s.ActorID == uuid.Nil {
		return nil
	}
	id := s.ActorID
	return &id
}
