package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/farmacia/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_AdminSummary(t *testing.T) {
	repo := new(testutil.MockSummaryRepository)
	products := new(testutil.MockProductRepository)
	clock := testutil.NewClockAt(time.Date(2031, 4, 9, 17, 45, 0, 0, time.UTC))
	svc := NewService(repo, products, clock)
	ctx := context.Background()
	midnight := time.Date(2031, 4, 9, 0, 0, 0, 0, time.UTC)

	repo.On("CountOrdersSince", ctx, midnight).Return(int64(4), nil)
	repo.On("SumPaidRevenue", ctx, midnight).Return(decimal.NewFromInt(81000), nil)
	repo.On("SumPaidRevenue", ctx, time.Time{}).Return(decimal.NewFromInt(1250000), nil)
	repo.On("CountCustomers", ctx).Return(int64(37), nil)
	products.On("Count", ctx).Return(int64(120), nil)

	got, err := svc.AdminSummary(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(4), got.NewOrders)
	assert.True(t, got.Revenue.Equal(decimal.NewFromInt(81000)))
	assert.Equal(t, int64(37), got.TotalUsers)
	assert.Equal(t, int64(120), got.TotalProducts)
	assert.True(t, got.HistoricalRevenue.Equal(decimal.NewFromInt(1250000)))
}

func TestService_AdminSummary_PropagatesErrors(t *testing.T) {
	repo := new(testutil.MockSummaryRepository)
	svc := NewService(repo, new(testutil.MockProductRepository), testutil.NewClockAt(time.Date(2031, 4, 9, 0, 0, 0, 0, time.UTC)))
	ctx := context.Background()
	boom := errors.New("connection reset")

	repo.On("CountOrdersSince", ctx, time.Date(2031, 4, 9, 0, 0, 0, 0, time.UTC)).Return(int64(0), boom)

	_, err := svc.AdminSummary(ctx)

	assert.ErrorIs(t, err, boom)
}
