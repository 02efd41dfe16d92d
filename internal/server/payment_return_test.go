package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nightmarket/aestore/internal/config"
	"github.com/nightmarket/aestore/internal/metrics"
	orderdomain "github.com/nightmarket/aestore/internal/order/domain"
	paymentdomain "github.com/nightmarket/aestore/internal/payment/domain"
	pendingdomain "github.com/nightmarket/aestore/internal/pendingpayment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeWebhookSvc struct {
	order     *orderdomain.Order
	err       error
	ingestErr error
	queried   []string
	ingested  []string
}

func (f *fakeWebhookSvc) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	f.ingested = append(f.ingested, provider)
	return f.ingestErr
}

func (f *fakeWebhookSvc) CompleteFromQuery(ctx context.Context, externalID string) (*orderdomain.Order, error) {
	f.queried = append(f.queried, externalID)
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func testServer(t *testing.T, webhookSvc *fakeWebhookSvc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zaptest.NewLogger(t)
	engine := NewEngine(log, metrics.New())
	s := &Server{
		engine: engine,
		cfg: &config.Config{
			BaseURL:  "https://store.example.com",
			Currency: "MYR",
		},
		log:        log,
		webhookSvc: webhookSvc,
	}
	s.registerRoutes()
	return engine
}

func TestToyyibPayReturn_Success(t *testing.T) {
	svc := &fakeWebhookSvc{order: &orderdomain.Order{ID: 123, PaymentID: "abc"}}
	engine := testServer(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/payments/toyyibpay/return?status_id=1&billcode=abc", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://store.example.com/payment/success?order_id=123", w.Header().Get("Location"))
	assert.Equal(t, []string{"abc"}, svc.queried)
}

func TestToyyibPayReturn_AdvisoryStatusIgnored(t *testing.T) {
	// status_id says failed, but settlement is still re-queried and wins.
	svc := &fakeWebhookSvc{order: &orderdomain.Order{ID: 123, PaymentID: "abc"}}
	engine := testServer(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/payments/toyyibpay/return?status_id=3&billcode=abc", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/payment/success")
}

func TestToyyibPayReturn_MissingBillCode(t *testing.T) {
	svc := &fakeWebhookSvc{}
	engine := testServer(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/payments/toyyibpay/return", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/payment/failed")
	assert.Empty(t, svc.queried)
}

func TestToyyibPayCallback_AlwaysAcknowledges(t *testing.T) {
	svc := &fakeWebhookSvc{err: context.DeadlineExceeded}
	engine := testServer(t, svc)

	form := url.Values{}
	form.Set("billcode", "abc")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/toyyibpay/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"abc"}, svc.queried)
}

func TestProviderWebhook_Acknowledged(t *testing.T) {
	svc := &fakeWebhookSvc{}
	engine := testServer(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/stripe/webhook", strings.NewReader(`{}`))
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"stripe"}, svc.ingested)
}

func TestProviderWebhook_VerificationFailureAnswers4xx(t *testing.T) {
	svc := &fakeWebhookSvc{ingestErr: paymentdomain.ErrVerificationFailed}
	engine := testServer(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/stripe/webhook", strings.NewReader(`{}`))
	engine.ServeHTTP(w, req)

	// Generic payload, no hint which check failed.
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "verification_failed")
}

func TestProviderWebhook_UntrackedPaymentAnswers404(t *testing.T) {
	svc := &fakeWebhookSvc{ingestErr: pendingdomain.ErrNotFound}
	engine := testServer(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/stripe/webhook", strings.NewReader(`{}`))
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
