package dto

import (
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates
const DateLayout = time.DateOnly

// RegisterValidators adds the ledger binding tags:
//
//	decimal_gt0   string holding a decimal amount > 0
//	decimal_gte0  string holding a decimal amount >= 0
//	period        YYYY-MM billing period
//	date          YYYY-MM-DD calendar date
func RegisterValidators(v *validator.Validate) error {
	validators := map[string]validator.Func{
		"decimal_gt0":  decimalGreaterThanZero,
		"decimal_gte0": decimalNotNegative,
		"period":       billingPeriod,
		"date":         calendarDate,
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func decimalGreaterThanZero(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && d.IsPositive()
}

func decimalNotNegative(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && !d.IsNegative()
}

func billingPeriod(fl validator.FieldLevel) bool {
	_, err := finance.ParseBillingPeriod(fl.Field().String())
	return err == nil
}

func calendarDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// ParseDateOpt parses an optional date; an empty string yields nil
func ParseDateOpt(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseDecimalOpt parses an optional decimal; an empty string yields nil
func ParseDecimalOpt(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
