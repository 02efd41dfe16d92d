package toyyibpay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nightmarket/aestore/internal/config"
	"github.com/nightmarket/aestore/internal/payment/domain"
)

const defaultBaseURL = "https://toyyibpay.com"

// Adapter integrates ToyyibPay, a Malaysian FPX gateway. ToyyibPay has no
// signed push notifications; its redirect callback is advisory and every
// settlement answer comes from getBillTransactions.
type Adapter struct {
	secretKey    string
	categoryCode string
	baseURL      string
	client       *http.Client
}

func New(cfg config.ToyyibPayConfig) *Adapter {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{
		secretKey:    strings.TrimSpace(cfg.SecretKey),
		categoryCode: strings.TrimSpace(cfg.CategoryCode),
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *Adapter) Provider() string {
	return "toyyibpay"
}

func (a *Adapter) CreateIntent(ctx context.Context, req domain.CreateIntentRequest) (*domain.Intent, error) {
	form := url.Values{}
	form.Set("userSecretKey", a.secretKey)
	form.Set("categoryCode", a.categoryCode)
	form.Set("billName", truncate(req.Description, 30))
	form.Set("billDescription", truncate(req.Description, 100))
	form.Set("billPriceSetting", "1")
	form.Set("billPayorInfo", "1")
	// billAmount is already minor units (sen).
	form.Set("billAmount", strconv.FormatInt(req.Amount, 10))
	form.Set("billReturnUrl", req.ReturnURL)
	form.Set("billCallbackUrl", req.CallbackURL)
	form.Set("billExternalReferenceNo", req.Reference)
	form.Set("billTo", req.BillName)
	form.Set("billEmail", req.BillEmail)
	form.Set("billPhone", req.BillPhone)
	form.Set("billPaymentChannel", "0")

	raw, err := a.post(ctx, "/index.php/api/createBill", form)
	if err != nil {
		return nil, err
	}

	var bills []createBillResponse
	if err := json.Unmarshal(raw, &bills); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if len(bills) == 0 || strings.TrimSpace(bills[0].BillCode) == "" {
		return nil, domain.ErrInvalidPayload
	}

	billCode := strings.TrimSpace(bills[0].BillCode)
	return &domain.Intent{
		ExternalID: billCode,
		PaymentURL: a.baseURL + "/" + billCode,
	}, nil
}

// Verify always rejects: there is no signature to check, so nothing pushed
// at the webhook endpoint can be trusted for this provider.
func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	return domain.ErrInvalidSignature
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*domain.Event, error) {
	return nil, domain.ErrNotSupported
}

func (a *Adapter) QueryTransaction(ctx context.Context, externalID string) (*domain.Transaction, error) {
	form := url.Values{}
	form.Set("userSecretKey", a.secretKey)
	form.Set("billCode", externalID)

	raw, err := a.post(ctx, "/index.php/api/getBillTransactions", form)
	if err != nil {
		return nil, err
	}

	var transactions []billTransaction
	if err := json.Unmarshal(raw, &transactions); err != nil {
		return nil, domain.ErrInvalidPayload
	}

	tx := &domain.Transaction{Reference: externalID}
	for _, candidate := range transactions {
		if candidate.BillPaymentStatus != "1" {
			continue
		}
		amount, err := parseAmount(candidate.BillPaymentAmount)
		if err != nil {
			return nil, domain.ErrInvalidPayload
		}
		tx.Settled = true
		tx.Amount = amount
		tx.Currency = "MYR"
		if ref := strings.TrimSpace(candidate.BillPaymentInvoiceNo); ref != "" {
			tx.Reference = ref
		}
		break
	}
	return tx, nil
}

func (a *Adapter) post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("toyyibpay: %s returned %d", path, resp.StatusCode)
	}
	return raw, nil
}

type createBillResponse struct {
	BillCode string `json:"BillCode"`
}

type billTransaction struct {
	BillPaymentStatus    string `json:"billpaymentStatus"`
	BillPaymentAmount    string `json:"billpaymentAmount"`
	BillPaymentInvoiceNo string `json:"billpaymentInvoiceNo"`
}

// parseAmount reads billpaymentAmount, which ToyyibPay reports already in
// sen ("8820" for RM88.20), as an int64.
func parseAmount(value string) (int64, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(parsed)), nil
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
