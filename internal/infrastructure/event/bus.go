package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/campusledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// InMemoryEventBus delivers domain events to in-process subscribers. The
// services publish only after their transaction commits, so a handler never
// sees an event for a write that rolled back.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	async    bool
	running  atomic.Bool
	wg       sync.WaitGroup
}

// BusOption configures the bus
type BusOption func(*InMemoryEventBus)

// WithAsyncDispatch runs each handler on its own goroutine so Publish returns
// without waiting on slow subscribers such as SMS delivery. Stop waits for
// in-flight handlers.
func WithAsyncDispatch() BusOption {
	return func(b *InMemoryEventBus) {
		b.async = true
	}
}

func NewInMemoryEventBus(log *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   log,
	}
	b.running.Store(true)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish hands every event to its subscribers. Handler failures are logged
// and never returned; the ledger write they follow has already committed.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if !b.running.Load() {
		b.logger.Warn("event bus stopped, dropping events", zap.Int("count", len(events)))
		return nil
	}

	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			if !b.async {
				b.dispatch(ctx, handler, event)
				continue
			}
			b.wg.Add(1)
			go func(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) {
				defer b.wg.Done()
				b.dispatch(ctx, handler, event)
			}(context.WithoutCancel(ctx), handler, event)
		}
	}
	return nil
}

// Subscribe registers handler for eventTypes, defaulting to the handler's own
// EventTypes.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("event handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

func (b *InMemoryEventBus) Start(context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started",
		zap.Bool("async", b.async),
		zap.Int("handlers", b.registry.Count()),
	)
	return nil
}

// Stop refuses new events and waits for in-flight handlers or ctx.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus stop: %w", ctx.Err())
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) {
	log := logger.Using(ctx, b.logger).With(
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
	)
	defer func() {
		if r := recover(); r != nil {
			log.Error("event handler panicked", zap.Any("panic", r))
		}
	}()

	if err := handler.Handle(ctx, event); err != nil {
		log.Error("event handler failed", zap.Error(err))
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
