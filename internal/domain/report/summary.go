// Package report holds the read models behind the back-office dashboard.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the admin dashboard snapshot
type Summary struct {
	OrdersToday       int64
	RevenueToday      decimal.Decimal
	TotalCustomers    int64
	TotalProducts     int64
	HistoricalRevenue decimal.Decimal
}

// StartOfDay returns UTC midnight of the day containing t
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SummaryRepository runs the dashboard aggregates
type SummaryRepository interface {
	// CountOrdersSince counts orders created at or after since.
	CountOrdersSince(ctx context.Context, since time.Time) (int64, error)

	// SumPaidRevenue sums the frozen totals of paid orders created at or
	// after since. A zero since covers all history.
	SumPaidRevenue(ctx context.Context, since time.Time) (decimal.Decimal, error)

	// CountCustomers counts distinct users that placed an order or hold a
	// gamification profile.
	CountCustomers(ctx context.Context) (int64, error)
}
