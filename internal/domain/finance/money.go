package finance

import (
	"time"

	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places kept for every ledger amount
const MoneyScale int32 = 2

// MinorUnit is the smallest representable amount (0.01)
var MinorUnit = decimal.New(1, -MoneyScale)

// RoundMoney rounds an amount half-away-from-zero to the ledger scale
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// hasMoneyScale reports whether the amount carries no more than two decimals
func hasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

// validatePositiveAmount checks amount > 0 at ledger scale
func validatePositiveAmount(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return shared.NewValidationError("INVALID_AMOUNT", field+" must be greater than zero")
	}
	if !hasMoneyScale(d) {
		return shared.NewValidationError("INVALID_AMOUNT", field+" cannot have more than two decimal places")
	}
	return nil
}

// DateOnly truncates t to midnight UTC of its calendar day
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from -> to
func DaysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}

// AddMonthsClamped moves t forward by n calendar months, clamping the day to the
// last day of the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// SumAmounts adds a list of amounts
func SumAmounts(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
