// Package payment creates payment intents with the configured provider.
package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IntentRequest describes the amount a customer is about to pay
type IntentRequest struct {
	// Amount is in whole currency units.
	Amount decimal.Decimal
	// Currency is an ISO code; empty selects the gateway's configured one.
	Currency string
	Metadata map[string]string
}

// Intent is the provider's handle for a pending payment
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// Gateway creates payment intents
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

// NoopGateway hands out local intent ids. Used when no provider key is
// configured so checkout can be exercised end to end in development.
type NoopGateway struct {
	logger *zap.Logger
}

// NewNoopGateway creates a NoopGateway
func NewNoopGateway(logger *zap.Logger) *NoopGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopGateway{logger: logger}
}

// CreateIntent returns a synthetic intent
func (g *NoopGateway) CreateIntent(_ context.Context, req IntentRequest) (*Intent, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("payment: amount must be positive")
	}
	id := "pi_local_" + uuid.NewString()
	g.logger.Warn("Payment provider not configured, issuing local intent",
		zap.String("intent_id", id),
		zap.String("amount", req.Amount.String()),
	)
	return &Intent{ID: id, ClientSecret: id + "_secret"}, nil
}

var _ Gateway = (*NoopGateway)(nil)
