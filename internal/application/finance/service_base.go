package finance

import (
	"context"
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/campusledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Clock returns the current instant. Services derive "today" from it.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// serviceBase carries what every ledger write service shares: the transaction
// scope, the optional event publisher and the clock.
type serviceBase struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	clock          Clock
}

func newServiceBase(txScope TransactionScope) serviceBase {
	return serviceBase{txScope: txScope, clock: systemClock}
}

// SetEventPublisher sets the publisher that receives domain events after commit
func (b *serviceBase) SetEventPublisher(publisher shared.EventPublisher) {
	b.eventPublisher = publisher
}

// SetClock overrides the time source
func (b *serviceBase) SetClock(clock Clock) {
	if clock != nil {
		b.clock = clock
	}
}

func (b *serviceBase) now() time.Time {
	return b.clock().UTC()
}

func (b *serviceBase) today() time.Time {
	return finance.DateOnly(b.now())
}

// publish hands committed events to the bus. Delivery problems are logged and
// never fail the operation that raised them.
func (b *serviceBase) publish(ctx context.Context, events []shared.DomainEvent) {
	if b.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := b.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

type eventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// drainEvents takes the pending events off each aggregate, in argument order
func drainEvents(sources ...eventSource) []shared.DomainEvent {
	var events []shared.DomainEvent
	for _, src := range sources {
		events = append(events, src.GetDomainEvents()...)
		src.ClearDomainEvents()
	}
	return events
}
