package domain

import (
	"context"
	"net/http"
)

type EventType string

const (
	EventTypeSucceeded EventType = "payment.succeeded"
	EventTypeFailed    EventType = "payment.failed"
)

// Event is a provider notification normalized to a common shape. Amount is
// in minor units as reported by the provider; reconciliation compares it
// against the ledger, never trusts it.
type Event struct {
	Provider   string
	ExternalID string
	Type       EventType
	Amount     int64
	Currency   string
	RawPayload []byte
}

// Intent is a freshly minted provider payment. Handle is the client-side
// credential (Stripe client secret); PaymentURL is the hosted page for
// redirect providers. Exactly one of the two is set.
type Intent struct {
	ExternalID string `json:"external_id"`
	Handle     string `json:"handle,omitempty"`
	PaymentURL string `json:"payment_url,omitempty"`
}

// Transaction is the provider's authoritative answer when we ask about a
// payment, used on redirect returns and fallback polling where no signed
// push exists.
type Transaction struct {
	Settled   bool
	Amount    int64
	Currency  string
	Reference string
}

// CreateIntentRequest is what checkout hands an adapter to mint a payment.
type CreateIntentRequest struct {
	Amount      int64
	Currency    string
	Reference   string
	Description string
	BillName    string
	BillEmail   string
	BillPhone   string
	ReturnURL   string
	CallbackURL string
}

// PaymentAdapter is one provider integration. Verify authenticates a push
// notification before Parse interprets it; redirect providers have no
// signed pushes and answer through QueryTransaction instead.
type PaymentAdapter interface {
	Provider() string
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*Event, error)
	QueryTransaction(ctx context.Context, externalID string) (*Transaction, error)
}
