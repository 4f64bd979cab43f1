package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const notificationDedupeTTL = 48 * time.Hour

// NotificationHandler turns payment and invoice events into guardian SMS
// notifications. Delivery is fire-and-forget: Handle never returns a delivery
// error, failures are only logged.
type NotificationHandler struct {
	logger      *zap.Logger
	dispatcher  NotificationDispatcher
	students    StudentDirectory
	idempotency shared.IdempotencyStore
	printer     *message.Printer
}

// NewNotificationHandler creates a new handler for ledger notifications
func NewNotificationHandler(logger *zap.Logger, dispatcher NotificationDispatcher, students StudentDirectory) *NotificationHandler {
	return &NotificationHandler{
		logger:     logger,
		dispatcher: dispatcher,
		students:   students,
		printer:    message.NewPrinter(language.English),
	}
}

// WithIdempotency drops events that were already notified
func (h *NotificationHandler) WithIdempotency(store shared.IdempotencyStore) *NotificationHandler {
	h.idempotency = store
	return h
}

// WithLocale formats amounts and dates for the given BCP 47 tag
func (h *NotificationHandler) WithLocale(tag string) *NotificationHandler {
	if t, err := language.Parse(tag); err == nil {
		h.printer = message.NewPrinter(t)
	}
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationHandler) EventTypes() []string {
	return []string{
		finance.EventPaymentConfirmed,
		finance.EventInvoiceIssued,
		finance.EventInvoiceOverdue,
	}
}

// Handle builds and dispatches the notification for one event
func (h *NotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	studentID, templateID, vars, ok := h.render(event)
	if !ok {
		h.logger.Debug("no notification for event", zap.String("event_type", event.EventType()))
		return nil
	}

	key := "notify:" + event.EventID().String()
	if h.idempotency != nil {
		fresh, err := h.idempotency.MarkProcessed(ctx, key, notificationDedupeTTL)
		if err != nil {
			h.logger.Warn("idempotency check failed, notifying anyway",
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		} else if !fresh {
			h.logger.Debug("duplicate event dropped", zap.String("event_id", event.EventID().String()))
			return nil
		}
	}

	if err := h.dispatch(ctx, event.TenantID(), studentID, templateID, vars); err != nil {
		h.logger.Warn("failed to send ledger notification",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.String("student_id", studentID.String()),
			zap.Error(err),
		)
		if h.idempotency != nil {
			_ = h.idempotency.Release(ctx, key)
		}
	}
	return nil
}

func (h *NotificationHandler) dispatch(ctx context.Context, tenantID, studentID uuid.UUID, templateID string, vars map[string]string) error {
	student, err := h.students.GetStudent(ctx, tenantID, studentID)
	if err != nil {
		return fmt.Errorf("failed to look up student: %w", err)
	}
	if student.GuardianPhone == "" {
		h.logger.Debug("student has no guardian phone, notification skipped",
			zap.String("student_id", studentID.String()),
		)
		return nil
	}
	vars["student_name"] = student.FullName

	return h.dispatcher.Dispatch(ctx, Notification{
		Channel:    ChannelSMS,
		Recipient:  student.GuardianPhone,
		TemplateID: templateID,
		Variables:  vars,
	})
}

// render maps an event to its template and variables
func (h *NotificationHandler) render(event shared.DomainEvent) (uuid.UUID, string, map[string]string, bool) {
	switch e := event.(type) {
	case *finance.PaymentEvent:
		if e.EventType() != finance.EventPaymentConfirmed {
			return uuid.Nil, "", nil, false
		}
		return e.StudentID, TemplatePaymentConfirmed, map[string]string{
			"amount":    h.amount(e.Amount.InexactFloat64()),
			"method":    string(e.Method),
			"reference": e.Reference,
		}, true
	case *finance.InvoiceEvent:
		vars := map[string]string{
			"invoice_number": e.InvoiceNumber,
			"period":         string(e.Period),
			"total":          h.amount(e.Total.InexactFloat64()),
			"due_date":       e.DueDate.Format("2006-01-02"),
		}
		switch e.EventType() {
		case finance.EventInvoiceIssued:
			return e.StudentID, TemplateInvoiceIssued, vars, true
		case finance.EventInvoiceOverdue:
			return e.StudentID, TemplateInvoiceOverdue, vars, true
		}
	}
	return uuid.Nil, "", nil, false
}

func (h *NotificationHandler) amount(v float64) string {
	return h.printer.Sprintf("%.2f", v)
}
