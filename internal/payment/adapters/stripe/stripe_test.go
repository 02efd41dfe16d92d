package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"

	"github.com/nightmarket/aestore/internal/config"
	"github.com/nightmarket/aestore/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func testAdapter() *Adapter {
	return New(config.StripeConfig{
		SecretKey:     "sk_test",
		WebhookSecret: testSecret,
	})
}

func sign(t *testing.T, payload []byte, timestamp string, secret string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	_, err := mac.Write([]byte(fmt.Sprintf("%s.%s", timestamp, payload)))
	require.NoError(t, err)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerify_ValidSignature(t *testing.T) {
	adapter := testAdapter()
	payload := []byte(`{"id":"evt_1"}`)

	headers := http.Header{}
	headers.Set("Stripe-Signature", sign(t, payload, "1700000000", testSecret))

	assert.NoError(t, adapter.Verify(context.Background(), payload, headers))
}

func TestVerify_Rejections(t *testing.T) {
	adapter := testAdapter()
	payload := []byte(`{"id":"evt_1"}`)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong secret", header: sign(t, payload, "1700000000", "whsec_other")},
		{name: "tampered payload", header: sign(t, []byte(`{"id":"evt_2"}`), "1700000000", testSecret)},
		{name: "garbage", header: "t=,v1="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.header != "" {
				headers.Set("Stripe-Signature", tt.header)
			}
			err := adapter.Verify(context.Background(), payload, headers)
			assert.ErrorIs(t, err, domain.ErrInvalidSignature)
		})
	}
}

func TestVerify_NoSecretConfigured(t *testing.T) {
	adapter := New(config.StripeConfig{SecretKey: "sk_test"})
	payload := []byte(`{"id":"evt_1"}`)

	headers := http.Header{}
	headers.Set("Stripe-Signature", sign(t, payload, "1700000000", testSecret))

	// Without a configured secret nothing can be trusted.
	err := adapter.Verify(context.Background(), payload, headers)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestParse_PaymentIntentSucceeded(t *testing.T) {
	adapter := testAdapter()
	payload := []byte(`{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"data": {"object": {
			"id": "pi_123",
			"amount": 8820,
			"amount_received": 8820,
			"currency": "myr"
		}}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, "stripe", event.Provider)
	assert.Equal(t, "pi_123", event.ExternalID)
	assert.Equal(t, domain.EventTypeSucceeded, event.Type)
	assert.Equal(t, int64(8820), event.Amount)
	assert.Equal(t, "MYR", event.Currency)
}

func TestParse_PaymentIntentFailed(t *testing.T) {
	adapter := testAdapter()
	payload := []byte(`{
		"id": "evt_2",
		"type": "payment_intent.payment_failed",
		"data": {"object": {"id": "pi_124", "amount": 4900, "currency": "myr"}}
	}`)

	event, err := adapter.Parse(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypeFailed, event.Type)
	assert.Equal(t, int64(4900), event.Amount)
}

func TestParse_IgnoredEventType(t *testing.T) {
	adapter := testAdapter()
	payload := []byte(`{"id":"evt_3","type":"charge.updated","data":{"object":{"id":"ch_1"}}}`)

	_, err := adapter.Parse(context.Background(), payload)
	assert.ErrorIs(t, err, domain.ErrEventIgnored)
}

func TestParse_MalformedPayload(t *testing.T) {
	adapter := testAdapter()

	_, err := adapter.Parse(context.Background(), []byte(`{not json`))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = adapter.Parse(context.Background(), []byte(`{"id":"","type":"payment_intent.succeeded"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}
