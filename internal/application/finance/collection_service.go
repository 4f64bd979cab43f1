package finance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/campusledger/backend/internal/domain/finance"
	"github.com/campusledger/backend/internal/domain/shared"
	"github.com/campusledger/backend/internal/infrastructure/telemetry"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Trend window limits in months
const (
	DefaultTrendMonths = 6
	MaxTrendMonths     = 24
)

var hundred = decimal.NewFromInt(100)

// CollectionService computes read-only collection views. It runs at default
// isolation and never takes locks.
type CollectionService struct {
	receivableRepo finance.AccountReceivableRepository
	paymentRepo    finance.PaymentRepository
	planRepo       finance.PaymentPlanRepository
	clock          Clock
}

// NewCollectionService creates a new CollectionService
func NewCollectionService(
	receivableRepo finance.AccountReceivableRepository,
	paymentRepo finance.PaymentRepository,
	planRepo finance.PaymentPlanRepository,
) *CollectionService {
	return &CollectionService{
		receivableRepo: receivableRepo,
		paymentRepo:    paymentRepo,
		planRepo:       planRepo,
		clock:          systemClock,
	}
}

// SetClock overrides the time source
func (s *CollectionService) SetClock(clock Clock) {
	if clock != nil {
		s.clock = clock
	}
}

func (s *CollectionService) today() time.Time {
	return finance.DateOnly(s.clock())
}

// AgingReport buckets the outstanding receivables by days overdue
func (s *CollectionService) AgingReport(ctx context.Context, scope shared.TenantScope) (_ *finance.AgingReport, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "collection", "aging_report")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return nil, err
	}
	outstanding, err := s.receivableRepo.FindOutstanding(ctx, scope.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load outstanding receivables: %w", err)
	}
	report := finance.BuildAgingReport(outstanding, s.today())
	return &report, nil
}

// Dashboard returns the collection overview of the tenant
func (s *CollectionService) Dashboard(ctx context.Context, scope shared.TenantScope) (_ *Dashboard, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "collection", "dashboard")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return nil, err
	}
	today := s.today()
	dash := &Dashboard{AsOf: today}

	totals, err := s.receivableRepo.SummarizeByStatus(ctx, scope.TenantID, finance.ReceivableFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to summarize receivables: %w", err)
	}
	for _, t := range totals {
		dash.TotalReceivable = dash.TotalReceivable.Add(t.Amount)
		dash.CollectedAmount = dash.CollectedAmount.Add(t.PaidAmount)
		if t.Status.IsOutstanding() {
			dash.PendingAmount = dash.PendingAmount.Add(t.RemainingAmount)
		}
	}
	dash.CollectionRate = ratio(dash.CollectedAmount, dash.TotalReceivable)

	outstanding, err := s.receivableRepo.FindOutstanding(ctx, scope.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load outstanding receivables: %w", err)
	}
	overdue := lo.Filter(outstanding, func(ar finance.AccountReceivable, _ int) bool { return ar.IsOverdue(today) })
	dash.OverdueCount = int64(len(overdue))
	dash.OverdueAmount = lo.Reduce(overdue, func(sum decimal.Decimal, ar finance.AccountReceivable, _ int) decimal.Decimal {
		return sum.Add(ar.RemainingAmount)
	}, decimal.Zero)

	thisMonth := finance.PeriodOf(today)
	lastMonth := finance.PeriodOf(thisMonth.Start().AddDate(0, -1, 0))
	if dash.CollectedThisMonth, err = s.paymentRepo.SumConfirmedBetween(ctx, scope.TenantID, thisMonth.Start(), thisMonth.End()); err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}
	if dash.CollectedLastMonth, err = s.paymentRepo.SumConfirmedBetween(ctx, scope.TenantID, lastMonth.Start(), lastMonth.End()); err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}
	dash.PaymentGrowth = growth(dash.CollectedThisMonth, dash.CollectedLastMonth)

	plans, err := s.planRepo.CountByStatus(ctx, scope.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count payment plans: %w", err)
	}
	dash.ActivePlans = plans[finance.PlanStatusActive]
	dash.CompletedPlans = plans[finance.PlanStatusCompleted]
	return dash, nil
}

// growth is the month-over-month change in percent. With nothing collected
// last month it is 100 when anything came in this month and 0 otherwise.
func growth(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

// Trends returns confirmed payments and created receivables for the last n
// months including the current one, oldest first. Months without activity are
// present with zero values.
func (s *CollectionService) Trends(ctx context.Context, scope shared.TenantScope, months int) (_ []TrendPoint, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "collection", "trends")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if months <= 0 {
		months = DefaultTrendMonths
	}
	if months > MaxTrendMonths {
		return nil, shared.NewValidationError("INVALID_TREND_WINDOW",
			fmt.Sprintf("Trend window cannot exceed %d months", MaxTrendMonths))
	}

	current := finance.PeriodOf(s.today())
	from := current.Start().AddDate(0, -(months - 1), 0)
	to := current.End()

	payments, err := s.paymentRepo.SumConfirmedByMonth(ctx, scope.TenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment trend: %w", err)
	}
	receivables, err := s.receivableRepo.SumCreatedByMonth(ctx, scope.TenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load receivable trend: %w", err)
	}
	paymentsByMonth := lo.KeyBy(payments, func(m finance.MonthlyAmount) string { return m.Month })
	receivablesByMonth := lo.KeyBy(receivables, func(m finance.MonthlyAmount) string { return m.Month })

	points := make([]TrendPoint, 0, months)
	for i := 0; i < months; i++ {
		month := string(finance.PeriodOf(from.AddDate(0, i, 0)))
		p, r := paymentsByMonth[month], receivablesByMonth[month]
		points = append(points, TrendPoint{
			Month:             month,
			PaymentsCount:     p.Count,
			PaymentsAmount:    p.Amount,
			ReceivablesCount:  r.Count,
			ReceivablesAmount: r.Amount,
		})
	}
	return points, nil
}

// PaymentMethodBreakdown splits the confirmed payments dated from..to, both
// days included, by payment method, largest amount first
func (s *CollectionService) PaymentMethodBreakdown(ctx context.Context, scope shared.TenantScope, from, to time.Time) (_ *MethodBreakdown, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "collection", "payment_method_breakdown")
	defer func() { telemetry.RecordError(span, err); span.End() }()

	if err := scope.Validate(); err != nil {
		return nil, err
	}
	from, to = finance.DateOnly(from), finance.DateOnly(to)
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, shared.NewValidationError("INVALID_DATE_RANGE", "The date range start must not be after its end")
	}

	totals, err := s.paymentRepo.BreakdownByMethod(ctx, scope.TenantID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to break down payments: %w", err)
	}

	breakdown := &MethodBreakdown{From: from, To: to}
	for _, t := range totals {
		breakdown.Count += t.Count
		breakdown.Total = breakdown.Total.Add(t.Amount)
	}
	breakdown.Lines = lo.Map(totals, func(t finance.MethodTotal, _ int) MethodBreakdownLine {
		line := MethodBreakdownLine{Method: t.Method, Count: t.Count, Amount: t.Amount}
		if t.Count > 0 {
			line.Average = t.Amount.DivRound(decimal.NewFromInt(t.Count), finance.MoneyScale)
		}
		if breakdown.Total.IsPositive() {
			line.Percentage = t.Amount.Div(breakdown.Total).Mul(hundred).Round(2)
		}
		return line
	})
	sort.SliceStable(breakdown.Lines, func(i, j int) bool {
		return breakdown.Lines[i].Amount.GreaterThan(breakdown.Lines[j].Amount)
	})
	return breakdown, nil
}
