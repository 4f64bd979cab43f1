package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/campusledger/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fieldParser converts validated request strings into domain values and keeps
// the first failure, so a handler can convert a whole request then check once.
type fieldParser struct {
	err error
}

func (p *fieldParser) fail(field, message string) {
	if p.err == nil {
		p.err = shared.NewValidationError("INVALID_"+strings.ToUpper(field), fmt.Sprintf("%s: %s", field, message))
	}
}

func (p *fieldParser) id(field, s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		p.fail(field, "invalid UUID format")
	}
	return id
}

func (p *fieldParser) optID(field, s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id := p.id(field, s)
	return &id
}

func (p *fieldParser) date(field, s string) time.Time {
	t, err := dto.ParseDate(s)
	if err != nil {
		p.fail(field, "must be a date in YYYY-MM-DD format")
	}
	return t
}

func (p *fieldParser) optDate(field, s string) *time.Time {
	t, err := dto.ParseDateOpt(s)
	if err != nil {
		p.fail(field, "must be a date in YYYY-MM-DD format")
	}
	return t
}

func (p *fieldParser) amount(field, s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		p.fail(field, "must be a decimal amount")
	}
	return d
}

func (p *fieldParser) optAmount(field, s string) *decimal.Decimal {
	d, err := dto.ParseDecimalOpt(s)
	if err != nil {
		p.fail(field, "must be a decimal amount")
	}
	return d
}

func (p *fieldParser) period(field, s string) finance.BillingPeriod {
	period, err := finance.ParseBillingPeriod(s)
	if err != nil {
		p.fail(field, "must be a billing period in YYYY-MM format")
	}
	return period
}

func (p *fieldParser) optPeriod(field, s string) *finance.BillingPeriod {
	if s == "" {
		return nil
	}
	period := p.period(field, s)
	return &period
}

// optEnum converts an optional enum query value
func optEnum[T ~string](s string) *T {
	if s == "" {
		return nil
	}
	v := T(s)
	return &v
}
