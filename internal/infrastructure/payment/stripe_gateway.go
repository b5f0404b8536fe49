package payment

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"go.uber.org/zap"
)

var minorUnits = decimal.NewFromInt(100)

// StripeGateway creates payment intents through the Stripe API
type StripeGateway struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeGateway validates config and initialises the Stripe client
func NewStripeGateway(config *StripeConfig, logger *zap.Logger) (*StripeGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.InitStripeClient()

	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeGateway{config: config, logger: logger}, nil
}

// CreateIntent creates a PaymentIntent for req.Amount. The amount is sent in
// minor units (x100).
func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("stripe: amount must be positive")
	}
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = g.config.Currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount.Mul(minorUnits).Round(0).IntPart()),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.Metadata = make(map[string]string, len(req.Metadata))
	maps.Copy(params.Metadata, req.Metadata)

	pi, err := paymentintent.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe payment intent",
			zap.String("amount", req.Amount.String()),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}

	g.logger.Info("Created Stripe payment intent",
		zap.String("intent_id", pi.ID),
		zap.String("order_id", req.Metadata["order_id"]))

	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

var _ Gateway = (*StripeGateway)(nil)
