package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/form"
	"go.uber.org/zap"
)

// mockBackend implements stripe.Backend for testing
type mockBackend struct {
	handler func(method, path string, params stripe.ParamsContainer) ([]byte, error)
}

func (m *mockBackend) Call(method, path, key string, params stripe.ParamsContainer, v stripe.LastResponseSetter) error {
	data, err := m.handler(method, path, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (m *mockBackend) CallStreaming(method, path, key string, params stripe.ParamsContainer, v stripe.StreamingLastResponseSetter) error {
	return nil
}

func (m *mockBackend) CallRaw(method, path, key string, body *form.Values, params *stripe.Params, v stripe.LastResponseSetter) error {
	return nil
}

func (m *mockBackend) CallMultipart(method, path, key, boundary string, body *bytes.Buffer, params *stripe.Params, v stripe.LastResponseSetter) error {
	return nil
}

func (m *mockBackend) SetMaxNetworkRetries(maxNetworkRetries int64) {}

func setupMockBackend(handler func(method, path string, params stripe.ParamsContainer) ([]byte, error)) func() {
	stripe.SetBackend(stripe.APIBackend, &mockBackend{handler: handler})
	return func() {
		stripe.SetBackend(stripe.APIBackend, nil)
	}
}

func testConfig() *StripeConfig {
	return &StripeConfig{
		SecretKey:  "sk_test_123456789",
		IsTestMode: true,
		Currency:   "cop",
	}
}

func TestStripeConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      *StripeConfig
		expectedErr string
	}{
		{"missing secret key", &StripeConfig{IsTestMode: true, Currency: "cop"}, "secret key is required"},
		{"test mode with live key", &StripeConfig{SecretKey: "sk_live_1", IsTestMode: true, Currency: "cop"}, "not a test key"},
		{"live mode with test key", &StripeConfig{SecretKey: "sk_test_1", Currency: "cop"}, "not a live key"},
		{"missing currency", &StripeConfig{SecretKey: "sk_test_1", IsTestMode: true}, "currency is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}

	assert.NoError(t, testConfig().Validate())
}

func TestStripeGateway_CreateIntent(t *testing.T) {
	var captured *stripe.PaymentIntentParams
	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		assert.Equal(t, http.MethodPost, method)
		assert.Equal(t, "/v1/payment_intents", path)
		captured = params.(*stripe.PaymentIntentParams)
		return json.Marshal(map[string]any{
			"id":            "pi_123",
			"object":        "payment_intent",
			"client_secret": "pi_123_secret_abc",
		})
	})
	defer cleanup()

	gw, err := NewStripeGateway(testConfig(), zap.NewNop())
	require.NoError(t, err)

	intent, err := gw.CreateIntent(context.Background(), IntentRequest{
		Amount:   decimal.RequireFromString("45900.50"),
		Currency: "COP",
		Metadata: map[string]string{"order_id": "o-1"},
	})

	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	require.NotNil(t, captured)
	assert.Equal(t, int64(4590050), *captured.Amount)
	assert.Equal(t, "cop", *captured.Currency)
	assert.Equal(t, "o-1", captured.Metadata["order_id"])
}

func TestStripeGateway_CreateIntent_UsesConfiguredCurrency(t *testing.T) {
	var captured *stripe.PaymentIntentParams
	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		captured = params.(*stripe.PaymentIntentParams)
		return json.Marshal(map[string]any{"id": "pi_usd", "object": "payment_intent", "client_secret": "s"})
	})
	defer cleanup()

	cfg := testConfig()
	cfg.Currency = "usd"
	gw, err := NewStripeGateway(cfg, zap.NewNop())
	require.NoError(t, err)

	_, err = gw.CreateIntent(context.Background(), IntentRequest{Amount: decimal.NewFromInt(25)})

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, "usd", *captured.Currency)
	assert.Equal(t, int64(2500), *captured.Amount)
}

func TestStripeGateway_CreateIntent_ProviderError(t *testing.T) {
	cleanup := setupMockBackend(func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		return nil, errors.New("card_declined")
	})
	defer cleanup()

	gw, err := NewStripeGateway(testConfig(), zap.NewNop())
	require.NoError(t, err)

	_, err = gw.CreateIntent(context.Background(), IntentRequest{Amount: decimal.NewFromInt(1000)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe: failed to create payment intent")
}

func TestStripeGateway_RejectsNonPositiveAmount(t *testing.T) {
	gw, err := NewStripeGateway(testConfig(), zap.NewNop())
	require.NoError(t, err)

	_, err = gw.CreateIntent(context.Background(), IntentRequest{Amount: decimal.Zero})
	assert.Error(t, err)
}

func TestNoopGateway_CreateIntent(t *testing.T) {
	gw := NewNoopGateway(nil)

	intent, err := gw.CreateIntent(context.Background(), IntentRequest{Amount: decimal.NewFromInt(10)})

	require.NoError(t, err)
	assert.Contains(t, intent.ID, "pi_local_")
	assert.Equal(t, intent.ID+"_secret", intent.ClientSecret)
}
