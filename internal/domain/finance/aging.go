package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgingBucket labels a range of days overdue
type AgingBucket string

const (
	AgingBucketCurrent AgingBucket = "current"
	AgingBucket1To30   AgingBucket = "1-30"
	AgingBucket31To60  AgingBucket = "31-60"
	AgingBucket61To90  AgingBucket = "61-90"
	AgingBucketOver90  AgingBucket = "90+"
)

// AgingBuckets returns the buckets in report order
func AgingBuckets() []AgingBucket {
	return []AgingBucket{
		AgingBucketCurrent,
		AgingBucket1To30,
		AgingBucket31To60,
		AgingBucket61To90,
		AgingBucketOver90,
	}
}

// BucketFor places a number of days overdue in its bucket
func BucketFor(daysOverdue int) AgingBucket {
	switch {
	case daysOverdue <= 0:
		return AgingBucketCurrent
	case daysOverdue <= 30:
		return AgingBucket1To30
	case daysOverdue <= 60:
		return AgingBucket31To60
	case daysOverdue <= 90:
		return AgingBucket61To90
	default:
		return AgingBucketOver90
	}
}

// AgingLine is the count and outstanding amount in one bucket
type AgingLine struct {
	Bucket AgingBucket     `json:"bucket"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// AgingReport is the outstanding balance split by days overdue
type AgingReport struct {
	Lines []AgingLine     `json:"lines"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// BuildAgingReport buckets outstanding receivables by max(0, today - due date) and sums
// their remaining amounts. Paid receivables are ignored.
func BuildAgingReport(receivables []AccountReceivable, today time.Time) AgingReport {
	index := make(map[AgingBucket]int, 5)
	report := AgingReport{Total: decimal.Zero}
	for i, b := range AgingBuckets() {
		index[b] = i
		report.Lines = append(report.Lines, AgingLine{Bucket: b, Amount: decimal.Zero})
	}

	for i := range receivables {
		ar := &receivables[i]
		if !ar.Status.IsOutstanding() {
			continue
		}
		line := &report.Lines[index[BucketFor(ar.DaysOverdue(today))]]
		line.Count++
		line.Amount = line.Amount.Add(ar.RemainingAmount)
		report.Count++
		report.Total = report.Total.Add(ar.RemainingAmount)
	}
	return report
}
