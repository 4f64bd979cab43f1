package finance

import (
	"time"

	"github.com/campusledger/backend/internal/domain/shared"
)

const periodLayout = "2006-01"

// BillingPeriod is a calendar month in YYYY-MM form
type BillingPeriod string

// ParseBillingPeriod validates a YYYY-MM string
func ParseBillingPeriod(s string) (BillingPeriod, error) {
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return "", shared.NewValidationError("INVALID_PERIOD", "Billing period must be in YYYY-MM format")
	}
	return BillingPeriod(t.Format(periodLayout)), nil
}

// PeriodOf returns the billing period containing t
func PeriodOf(t time.Time) BillingPeriod {
	return BillingPeriod(t.UTC().Format(periodLayout))
}

// String returns the string representation of BillingPeriod
func (p BillingPeriod) String() string {
	return string(p)
}

// Start returns the first day of the period
func (p BillingPeriod) Start() time.Time {
	t, err := time.Parse(periodLayout, string(p))
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// End returns the first day of the following period
func (p BillingPeriod) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// DueDate returns the given day of the period, clamped to the month length
func (p BillingPeriod) DueDate(day int) time.Time {
	if day < 1 {
		day = 1
	}
	start := p.Start()
	last := start.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return start.AddDate(0, 0, day-1)
}

// Compact returns YYYYMM, used in invoice numbers
func (p BillingPeriod) Compact() string {
	return p.Start().Format("200601")
}
