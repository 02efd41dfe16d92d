package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nightmarket/aestore/internal/config"
	"github.com/nightmarket/aestore/internal/payment/domain"
)

const defaultBaseURL = "https://api.stripe.com"

type Adapter struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	client        *http.Client
}

func New(cfg config.StripeConfig) *Adapter {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{
		secretKey:     strings.TrimSpace(cfg.SecretKey),
		webhookSecret: strings.TrimSpace(cfg.WebhookSecret),
		baseURL:       strings.TrimRight(baseURL, "/"),
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *Adapter) Provider() string {
	return "stripe"
}

func (a *Adapter) CreateIntent(ctx context.Context, req domain.CreateIntentRequest) (*domain.Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", strings.ToLower(req.Currency))
	form.Set("metadata[reference]", req.Reference)
	if req.Description != "" {
		form.Set("description", req.Description)
	}
	form.Set("automatic_payment_methods[enabled]", "true")

	var intent stripePaymentIntent
	if err := a.call(ctx, http.MethodPost, "/v1/payment_intents", form, &intent); err != nil {
		return nil, err
	}
	if intent.ID == "" {
		return nil, domain.ErrInvalidPayload
	}
	return &domain.Intent{
		ExternalID: intent.ID,
		Handle:     intent.ClientSecret,
	}, nil
}

func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	if a.webhookSecret == "" {
		return domain.ErrInvalidSignature
	}
	sigHeader := strings.TrimSpace(headers.Get("Stripe-Signature"))
	if sigHeader == "" {
		return domain.ErrInvalidSignature
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return domain.ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}
	return domain.ErrInvalidSignature
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*domain.Event, error) {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, domain.ErrInvalidPayload
	}

	var eventType domain.EventType
	switch strings.TrimSpace(event.Type) {
	case "payment_intent.succeeded":
		eventType = domain.EventTypeSucceeded
	case "payment_intent.payment_failed":
		eventType = domain.EventTypeFailed
	default:
		return nil, domain.ErrEventIgnored
	}

	var intent stripePaymentIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if strings.TrimSpace(intent.ID) == "" {
		return nil, domain.ErrInvalidPayload
	}

	amount := intent.AmountReceived
	if amount <= 0 {
		amount = intent.Amount
	}
	return &domain.Event{
		Provider:   "stripe",
		ExternalID: intent.ID,
		Type:       eventType,
		Amount:     amount,
		Currency:   strings.ToUpper(strings.TrimSpace(intent.Currency)),
		RawPayload: payload,
	}, nil
}

func (a *Adapter) QueryTransaction(ctx context.Context, externalID string) (*domain.Transaction, error) {
	var intent stripePaymentIntent
	path := "/v1/payment_intents/" + url.PathEscape(externalID)
	if err := a.call(ctx, http.MethodGet, path, nil, &intent); err != nil {
		return nil, err
	}
	if intent.ID == "" {
		return nil, domain.ErrInvalidPayload
	}

	amount := intent.AmountReceived
	if amount <= 0 {
		amount = intent.Amount
	}
	return &domain.Transaction{
		Settled:   intent.Status == "succeeded",
		Amount:    amount,
		Currency:  strings.ToUpper(strings.TrimSpace(intent.Currency)),
		Reference: intent.ID,
	}, nil
}

func (a *Adapter) call(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("stripe: %s %s returned %d", method, path, resp.StatusCode)
	}
	return json.Unmarshal(raw, out)
}

type stripeEvent struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data stripeEventData `json:"data"`
}

type stripeEventData struct {
	Object json.RawMessage `json:"object"`
}

type stripePaymentIntent struct {
	ID             string `json:"id"`
	Amount         int64  `json:"amount"`
	AmountReceived int64  `json:"amount_received"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`
	ClientSecret   string `json:"client_secret"`
}

func parseSignatureHeader(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("invalid_signature")
	}
	return timestamp, signatures, nil
}
