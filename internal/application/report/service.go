package report

import (
	"context"
	"time"

	"github.com/farmacia/backend/internal/domain/catalog"
	"github.com/farmacia/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/zoobzio/clockz"
)

// SummaryResponse is the admin dashboard payload
type SummaryResponse struct {
	NewOrders         int64           `json:"new_orders"`
	Revenue           decimal.Decimal `json:"revenue"`
	TotalUsers        int64           `json:"total_users"`
	TotalProducts     int64           `json:"total_products"`
	HistoricalRevenue decimal.Decimal `json:"historical_revenue"`
}

// Service builds the admin summary
type Service struct {
	repo        report.SummaryRepository
	productRepo catalog.ProductRepository
	clock       clockz.Clock
}

// NewService creates a new report Service
func NewService(repo report.SummaryRepository, productRepo catalog.ProductRepository, clock clockz.Clock) *Service {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &Service{repo: repo, productRepo: productRepo, clock: clock}
}

// AdminSummary aggregates today's and all-time figures. "Today" starts at
// UTC midnight.
func (s *Service) AdminSummary(ctx context.Context) (*SummaryResponse, error) {
	start := report.StartOfDay(s.clock.Now())

	var sum report.Summary
	var err error

	if sum.OrdersToday, err = s.repo.CountOrdersSince(ctx, start); err != nil {
		return nil, err
	}
	if sum.RevenueToday, err = s.repo.SumPaidRevenue(ctx, start); err != nil {
		return nil, err
	}
	if sum.TotalCustomers, err = s.repo.CountCustomers(ctx); err != nil {
		return nil, err
	}
	if sum.TotalProducts, err = s.productRepo.Count(ctx); err != nil {
		return nil, err
	}
	if sum.HistoricalRevenue, err = s.repo.SumPaidRevenue(ctx, time.Time{}); err != nil {
		return nil, err
	}

	return &SummaryResponse{
		NewOrders:         sum.OrdersToday,
		Revenue:           sum.RevenueToday,
		TotalUsers:        sum.TotalCustomers,
		TotalProducts:     sum.TotalProducts,
		HistoricalRevenue: sum.HistoricalRevenue,
	}, nil
}
