package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload builds a Stripe-Signature header the same way Stripe's
// servers do: hex HMAC-SHA256 of "<timestamp>.<payload>".
func signPayload(secret string, payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(id, eventType, object string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"type":%q,"api_version":%q,"data":{"object":%s}}`,
		id, eventType, stripe.APIVersion, object,
	))
}

func TestVerifyEventSubscriptionUpdated(t *testing.T) {
	g := NewStripeGateway("sk_test_key", testWebhookSecret)

	payload := eventPayload("evt_1", "customer.subscription.updated", `{
		"id": "sub_1",
		"customer": "cus_1",
		"status": "active",
		"metadata": {"user_id": "8a3f5c1e-0000-4000-8000-000000000001"},
		"items": {
			"object": "list",
			"data": [{
				"id": "si_1",
				"price": {"id": "price_starter"},
				"current_period_end": 1767225600
			}]
		}
	}`)

	evt, err := g.VerifyEvent(payload, signPayload(testWebhookSecret, payload))
	require.NoError(t, err)

	assert.Equal(t, "evt_1", evt.ID)
	assert.Equal(t, "customer.subscription.updated", evt.Type)
	require.NotNil(t, evt.Subscription)
	assert.Equal(t, "sub_1", evt.Subscription.ID)
	assert.Equal(t, "cus_1", evt.Subscription.CustomerId)
	assert.Equal(t, "active", evt.Subscription.Status)
	assert.Equal(t, "price_starter", evt.Subscription.PriceId)
	assert.Equal(t, "8a3f5c1e-0000-4000-8000-000000000001", evt.Subscription.Metadata["user_id"])
	require.NotNil(t, evt.Subscription.CurrentPeriodEnd)
	assert.Equal(t, int64(1767225600), evt.Subscription.CurrentPeriodEnd.Unix())
}

func TestVerifyEventInvoiceSubscriptionId(t *testing.T) {
	g := NewStripeGateway("sk_test_key", testWebhookSecret)

	tests := []struct {
		name   string
		object string
		want   string
	}{
		{
			name:   "top-level subscription field",
			object: `{"id": "in_1", "subscription": "sub_1"}`,
			want:   "sub_1",
		},
		{
			name:   "nested under parent.subscription_details",
			object: `{"id": "in_2", "parent": {"subscription_details": {"subscription": "sub_2"}}}`,
			want:   "sub_2",
		},
		{
			name:   "one-off invoice without subscription",
			object: `{"id": "in_3"}`,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := eventPayload("evt_inv", "invoice.payment_failed", tt.object)

			evt, err := g.VerifyEvent(payload, signPayload(testWebhookSecret, payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, evt.SubscriptionId)
			assert.Nil(t, evt.Subscription)
		})
	}
}

func TestVerifyEventUnhandledTypePassesThrough(t *testing.T) {
	g := NewStripeGateway("sk_test_key", testWebhookSecret)

	payload := eventPayload("evt_ch", "charge.succeeded", `{"id": "ch_1"}`)

	evt, err := g.VerifyEvent(payload, signPayload(testWebhookSecret, payload))
	require.NoError(t, err)
	assert.Equal(t, "charge.succeeded", evt.Type)
	assert.Nil(t, evt.Subscription)
	assert.Empty(t, evt.SubscriptionId)
}

func TestVerifyEventRejectsWrongSecret(t *testing.T) {
	g := NewStripeGateway("sk_test_key", testWebhookSecret)

	payload := eventPayload("evt_1", "customer.subscription.updated", `{"id": "sub_1"}`)

	_, err := g.VerifyEvent(payload, signPayload("whsec_somebody_else", payload))
	assert.Error(t, err)
}

func TestVerifyEventRejectsTamperedPayload(t *testing.T) {
	g := NewStripeGateway("sk_test_key", testWebhookSecret)

	payload := eventPayload("evt_1", "customer.subscription.updated", `{"id": "sub_1", "status": "active"}`)
	sig := signPayload(testWebhookSecret, payload)

	tampered := eventPayload("evt_1", "customer.subscription.updated", `{"id": "sub_1", "status": "canceled"}`)

	_, err := g.VerifyEvent(tampered, sig)
	assert.Error(t, err)
}
