package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingHandler struct {
	eventTypes []string
	mu         sync.Mutex
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	block      chan struct{}
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.block != nil {
		<-h.block
	}
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.eventTypes }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

type testEvent struct {
	shared.BaseDomainEvent
}

func newEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Payment", uuid.New(), uuid.New())}
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	confirmed := newRecordingHandler(finance.EventPaymentConfirmed)
	everything := newRecordingHandler()
	bus.Subscribe(confirmed)
	bus.Subscribe(everything)

	err := bus.Publish(context.Background(),
		newEvent(finance.EventPaymentConfirmed),
		newEvent(finance.EventPaymentRegistered),
		newEvent(finance.EventPaymentConfirmed),
	)

	require.NoError(t, err)
	assert.Equal(t, 2, confirmed.count())
	assert.Equal(t, 3, everything.count())
}

func TestInMemoryEventBus_SubscribeOverridesHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newRecordingHandler(finance.EventInvoiceIssued)
	bus.Subscribe(h, finance.EventInvoiceOverdue)

	_ = bus.Publish(context.Background(), newEvent(finance.EventInvoiceIssued), newEvent(finance.EventInvoiceOverdue))

	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_HandlerFailuresAreLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := newRecordingHandler(finance.EventInvoiceOverdue)
	failing.err = errors.New("sms gateway down")
	panicking := newRecordingHandler(finance.EventInvoiceOverdue)
	panicking.panicWith = "boom"
	after := newRecordingHandler(finance.EventInvoiceOverdue)
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(after)

	err := bus.Publish(context.Background(), newEvent(finance.EventInvoiceOverdue))

	require.NoError(t, err)
	assert.Equal(t, 1, after.count(), "later handlers still run")
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("event handler panicked").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newRecordingHandler(finance.EventPaymentCancelled)
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	_ = bus.Publish(context.Background(), newEvent(finance.EventPaymentCancelled))

	assert.Zero(t, h.count())
}

func TestInMemoryEventBus_AsyncDispatch(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsyncDispatch())
	h := newRecordingHandler(finance.EventPaymentConfirmed)
	h.block = make(chan struct{})
	bus.Subscribe(h)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, newEvent(finance.EventPaymentConfirmed)))
	cancel()
	assert.Zero(t, h.count(), "publish does not wait for the handler")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer stopCancel()
	assert.ErrorIs(t, bus.Stop(stopCtx), context.DeadlineExceeded)

	close(h.block)
	require.NoError(t, bus.Stop(context.Background()))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_StoppedBusDrops(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newRecordingHandler(finance.EventInvoicePaid)
	bus.Subscribe(h)
	require.NoError(t, bus.Stop(context.Background()))

	require.NoError(t, bus.Publish(context.Background(), newEvent(finance.EventInvoicePaid)))
	assert.Zero(t, h.count())

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newEvent(finance.EventInvoicePaid)))
	assert.Equal(t, 1, h.count())
}
