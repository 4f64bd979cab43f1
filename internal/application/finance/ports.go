package finance

import (
	"context"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/google/uuid"
)

// Student is the slice of the student directory the ledger needs
type Student struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	FullName      string
	GuardianPhone string
	Active        bool
}

// StudentDirectory looks up students of a school
type StudentDirectory interface {
	// GetStudent returns one student of the tenant, NotFound otherwise
	GetStudent(ctx context.Context, tenantID, studentID uuid.UUID) (*Student, error)

	// ListActiveStudents returns every active student of the tenant
	ListActiveStudents(ctx context.Context, tenantID uuid.UUID) ([]Student, error)

	// TenantsWithActiveStudents lists schools that have at least one active student
	TenantsWithActiveStudents(ctx context.Context) ([]uuid.UUID, error)
}

// FeeCatalog resolves what a student is billed for in a period
type FeeCatalog interface {
	BillableItems(ctx context.Context, tenantID, studentID uuid.UUID, period finance.BillingPeriod) ([]finance.BillableItem, error)
}

// VoucherFile is an uploaded payment voucher
type VoucherFile struct {
	TenantID    uuid.UUID
	PaymentID   uuid.UUID
	FileName    string
	ContentType string
	Data        []byte
}

// FileStorage stores voucher bytes and hands back an opaque reference
type FileStorage interface {
	Put(ctx context.Context, file VoucherFile) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Notification channels
const (
	ChannelSMS = "sms"
)

// Notification template ids
const (
	TemplatePaymentConfirmed = "payment_confirmed"
	TemplateInvoiceIssued    = "invoice_issued"
	TemplateInvoiceOverdue   = "invoice_overdue"
)

// Notification is one outbound message request
type Notification struct {
	Channel    string
	Recipient  string
	TemplateID string
	Variables  map[string]string
}

// NotificationDispatcher delivers notifications. Callers never wait on the
// outcome of a ledger operation for it.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}
