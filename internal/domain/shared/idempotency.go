package shared

import (
	"context"
	"time"
)

// IdempotencyStore records keys that must be acted on at most once within a TTL.
// The scheduler uses it as a run-once guard per (job, tenant, period) and the
// notification handler uses it to drop redelivered events.
type IdempotencyStore interface {
	// MarkProcessed returns true if the key was newly marked, false if it was already present
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been marked
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release removes a key so the action may run again (used after a failed run)
	Release(ctx context.Context, key string) error

	Close() error
}
