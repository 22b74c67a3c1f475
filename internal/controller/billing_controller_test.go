package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"estate-crm-be/internal/config"
	"estate-crm-be/internal/pkg/serverutils"
	"estate-crm-be/internal/repository/memory"
	"estate-crm-be/internal/service"

	"estate-crm-be/pkg/payments"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quietLogger struct{}

func (quietLogger) Debug(string, string, map[string]interface{}) {}
func (quietLogger) Info(string, string, map[string]interface{})  {}
func (quietLogger) Warn(string, string, map[string]interface{})  {}
func (quietLogger) Error(string, string, map[string]interface{}) {}
func (quietLogger) Sync() error                                  { return nil }

func newWebhookTestApp(t *testing.T) (*fiber.App, *payments.MockGateway) {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.ClientURL = "http://localhost:5173"
	cfg.Stripe.PriceStarter = "price_starter"
	cfg.Stripe.PricePro = "price_pro"
	cfg.Billing.SyncPollInterval = 10 * time.Millisecond
	cfg.Billing.SyncPollTimeout = 50 * time.Millisecond

	gateway := payments.NewMockGateway()
	svc := service.NewBillingService(
		memory.NewSubscriptionRepository(),
		memory.NewUserRepository(),
		gateway, nil, nil, nil, quietLogger{}, cfg,
	)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewBillingController(svc).RegisterRoutes(app.Group("/api"))
	return app, gateway
}

func TestWebhookEndpointRejectsMissingSignature(t *testing.T) {
	app, _ := newWebhookTestApp(t)

	req := httptest.NewRequest("POST", "/api/billing/v1/webhook", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
}

func TestWebhookEndpointAcknowledgesVerifiedEvent(t *testing.T) {
	app, gateway := newWebhookTestApp(t)

	gateway.Events["sig_valid"] = &payments.Event{
		ID:   "evt_1",
		Type: "charge.succeeded",
	}

	req := httptest.NewRequest("POST", "/api/billing/v1/webhook", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", "sig_valid")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body["received"])
}

func TestPlansEndpointIsPublic(t *testing.T) {
	app, _ := newWebhookTestApp(t)

	req := httptest.NewRequest("GET", "/api/billing/v1/plans", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestStatusEndpointAcceptsConfiguredToken(t *testing.T) {
	app, _ := newWebhookTestApp(t)
	serverutils.ConfigureJwt("test-signing-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.New().String(),
	})
	signed, err := token.SignedString([]byte("test-signing-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/billing/v1/status", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCheckoutEndpointRequiresAuth(t *testing.T) {
	app, _ := newWebhookTestApp(t)

	req := httptest.NewRequest("POST", "/api/billing/v1/checkout", bytes.NewReader([]byte(`{"price_id":"price_starter"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
