package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("NewBusinessMetrics: meter cannot be nil")

// BusinessMetrics counts orders, money and rewards.
type BusinessMetrics struct {
	orderCreatedTotal     *Counter
	orderAmountTotal      *Counter
	orderConfirmedTotal   *Counter
	pointsAwardedTotal    *Counter
	missionCompletedTotal *Counter
}

// NewBusinessMetrics registers the business counters on meter.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var err error
	bm := &BusinessMetrics{}
	counter := func(name, desc, unit string) *Counter {
		if err != nil {
			return nil
		}
		var c *Counter
		c, err = NewCounter(meter, name, desc, unit)
		return c
	}

	bm.orderCreatedTotal = counter("farmacia_order_created_total", "Total number of orders created", "{orders}")
	bm.orderAmountTotal = counter("farmacia_order_amount_total", "Total frozen order amount in minor currency units", "{cents}")
	bm.orderConfirmedTotal = counter("farmacia_order_confirmed_total", "Total number of orders confirmed as paid", "{orders}")
	bm.pointsAwardedTotal = counter("farmacia_points_awarded_total", "Total gamification points awarded", "{points}")
	bm.missionCompletedTotal = counter("farmacia_mission_completed_total", "Total weekly missions completed", "{missions}")
	if err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordOrderWithAmount records one created order and its total. The amount
// is counted in minor units (x100).
func (bm *BusinessMetrics) RecordOrderWithAmount(ctx context.Context, amount decimal.Decimal) {
	bm.orderCreatedTotal.Inc(ctx)
	bm.orderAmountTotal.Add(ctx, amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// RecordOrderConfirmed records an order moving to paid.
func (bm *BusinessMetrics) RecordOrderConfirmed(ctx context.Context) {
	bm.orderConfirmedTotal.Inc(ctx, AttrPaymentStatus.String("paid"))
}

// RecordPointsAwarded adds earned points; non-positive values are ignored.
func (bm *BusinessMetrics) RecordPointsAwarded(ctx context.Context, points int) {
	if points <= 0 {
		return
	}
	bm.pointsAwardedTotal.Add(ctx, int64(points))
}

// RecordMissionCompleted counts one completion of the mission code.
func (bm *BusinessMetrics) RecordMissionCompleted(ctx context.Context, code string) {
	bm.missionCompletedTotal.Inc(ctx, AttrMissionCode.String(code))
}
