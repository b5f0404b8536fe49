package telemetry_test

import (
	"context"
	"testing"

	"github.com/farmacia/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				out[m.Name] += dp.Value
			}
		}
	}
	return out
}

func newMetrics(t *testing.T) (*telemetry.BusinessMetrics, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	bm, err := telemetry.NewBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return bm, reader
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(nil)

	assert.Nil(t, bm)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestBusinessMetrics_Orders(t *testing.T) {
	bm, reader := newMetrics(t)
	ctx := context.Background()

	bm.RecordOrderWithAmount(ctx, decimal.NewFromInt(35000))
	bm.RecordOrderWithAmount(ctx, decimal.RequireFromString("4590.5"))
	bm.RecordOrderConfirmed(ctx)

	got := collect(t, reader)
	assert.Equal(t, int64(2), got["farmacia_order_created_total"])
	assert.Equal(t, int64(3500000+459050), got["farmacia_order_amount_total"])
	assert.Equal(t, int64(1), got["farmacia_order_confirmed_total"])
}

func TestBusinessMetrics_Rewards(t *testing.T) {
	bm, reader := newMetrics(t)
	ctx := context.Background()

	bm.RecordPointsAwarded(ctx, 45)
	bm.RecordPointsAwarded(ctx, 0)
	bm.RecordMissionCompleted(ctx, "big_spender")
	bm.RecordMissionCompleted(ctx, "family_order")

	got := collect(t, reader)
	assert.Equal(t, int64(45), got["farmacia_points_awarded_total"])
	assert.Equal(t, int64(2), got["farmacia_mission_completed_total"])
}
