package telemetry

import (
	"context"
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics counts ledger activity. It subscribes to domain events so the
// services stay free of metric calls, and records job runs for the scheduler.
type LedgerMetrics struct {
	events      metric.Int64Counter
	paidAmount  metric.Float64Counter
	jobRuns     metric.Int64Counter
	jobDuration metric.Float64Histogram
	jobItems    metric.Int64Counter
}

// NewLedgerMetrics registers the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	m := &LedgerMetrics{}
	var err error
	if m.events, err = meter.Int64Counter("ledger.events",
		metric.WithDescription("Domain events raised by the ledger"),
		metric.WithUnit("{event}")); err != nil {
		return nil, err
	}
	if m.paidAmount, err = meter.Float64Counter("ledger.payments.confirmed_amount",
		metric.WithDescription("Sum of confirmed payment amounts"),
		metric.WithUnit("{currency}")); err != nil {
		return nil, err
	}
	if m.jobRuns, err = meter.Int64Counter("ledger.jobs.runs",
		metric.WithDescription("Scheduled job executions by outcome"),
		metric.WithUnit("{run}")); err != nil {
		return nil, err
	}
	if m.jobDuration, err = meter.Float64Histogram("ledger.jobs.duration",
		metric.WithDescription("Scheduled job duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 5, 15, 60, 300, 900)); err != nil {
		return nil, err
	}
	if m.jobItems, err = meter.Int64Counter("ledger.jobs.items",
		metric.WithDescription("Records touched by scheduled jobs"),
		metric.WithUnit("{item}")); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes subscribes to every event.
func (m *LedgerMetrics) EventTypes() []string { return nil }

// Handle implements shared.EventHandler.
func (m *LedgerMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	m.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", event.EventType()),
		attribute.String("aggregate_type", event.AggregateType()),
	))
	if pe, ok := event.(*finance.PaymentEvent); ok && pe.EventType() == finance.EventPaymentConfirmed {
		amount, _ := pe.Amount.Float64()
		m.paidAmount.Add(ctx, amount, metric.WithAttributes(attribute.String("method", string(pe.Method))))
	}
	return nil
}

// RecordJob records one scheduled job execution.
func (m *LedgerMetrics) RecordJob(ctx context.Context, job string, started time.Time, items int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(attribute.String("job", job), attribute.String("outcome", outcome))
	m.jobRuns.Add(ctx, 1, attrs)
	m.jobDuration.Record(ctx, time.Since(started).Seconds(), attrs)
	if items > 0 {
		m.jobItems.Add(ctx, int64(items), metric.WithAttributes(attribute.String("job", job)))
	}
}
