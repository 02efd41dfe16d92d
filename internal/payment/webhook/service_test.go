package webhook

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	cartrepo "github.com/nightmarket/aestore/internal/cart/repository"
	"github.com/nightmarket/aestore/internal/clock"
	couponrepo "github.com/nightmarket/aestore/internal/coupon/repository"
	couponservice "github.com/nightmarket/aestore/internal/coupon/service"
	"github.com/nightmarket/aestore/internal/fulfillment"
	"github.com/nightmarket/aestore/internal/metrics"
	orderrepo "github.com/nightmarket/aestore/internal/order/repository"
	"github.com/nightmarket/aestore/internal/payment/adapters"
	paymentdomain "github.com/nightmarket/aestore/internal/payment/domain"
	pendingdomain "github.com/nightmarket/aestore/internal/pendingpayment/domain"
	pendingrepo "github.com/nightmarket/aestore/internal/pendingpayment/repository"
	pendingservice "github.com/nightmarket/aestore/internal/pendingpayment/service"
	"github.com/nightmarket/aestore/internal/providers/email"
	"github.com/nightmarket/aestore/internal/providers/gameserver"
	"github.com/nightmarket/aestore/internal/redemption"
	userrepo "github.com/nightmarket/aestore/internal/user/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const testSchema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name TEXT,
	phone TEXT,
	created_at DATETIME NOT NULL
);
CREATE TABLE cart_items (
	id INTEGER PRIMARY KEY,
	user_id INTEGER NOT NULL,
	package_id INTEGER NOT NULL,
	quantity INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE TABLE coupons (
	id INTEGER PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	type TEXT NOT NULL,
	value INTEGER NOT NULL,
	min_purchase INTEGER NOT NULL DEFAULT 0,
	usage_limit INTEGER,
	used_count INTEGER NOT NULL DEFAULT 0,
	expires_at DATETIME,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at DATETIME NOT NULL
);
CREATE TABLE pending_payments (
	id INTEGER PRIMARY KEY,
	user_id INTEGER NOT NULL,
	provider TEXT NOT NULL,
	external_id TEXT NOT NULL UNIQUE,
	amount INTEGER NOT NULL,
	currency TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'created',
	cart_snapshot TEXT,
	metadata TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE orders (
	id INTEGER PRIMARY KEY,
	user_id INTEGER NOT NULL,
	payment_id TEXT NOT NULL UNIQUE,
	payment_provider TEXT NOT NULL,
	subtotal INTEGER NOT NULL,
	discount INTEGER NOT NULL DEFAULT 0,
	total_amount INTEGER NOT NULL,
	currency TEXT NOT NULL,
	coupon_code TEXT,
	status TEXT NOT NULL DEFAULT 'paid',
	created_at DATETIME NOT NULL
);
CREATE TABLE order_items (
	id INTEGER PRIMARY KEY,
	order_id INTEGER NOT NULL,
	package_id INTEGER NOT NULL,
	package_name TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	unit_price INTEGER NOT NULL,
	aecoin_amount INTEGER NOT NULL
);
CREATE TABLE redemption_codes (
	id INTEGER PRIMARY KEY,
	order_id INTEGER NOT NULL,
	code TEXT NOT NULL UNIQUE,
	aecoin_amount INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);
`

// fakeAdapter scripts provider behavior per test.
type fakeAdapter struct {
	provider  string
	verifyErr error
	event     *paymentdomain.Event
	parseErr  error
	tx        *paymentdomain.Transaction
	queryErr  error
}

func (f *fakeAdapter) Provider() string { return f.provider }

func (f *fakeAdapter) CreateIntent(ctx context.Context, req paymentdomain.CreateIntentRequest) (*paymentdomain.Intent, error) {
	return nil, paymentdomain.ErrNotSupported
}

func (f *fakeAdapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	return f.verifyErr
}

func (f *fakeAdapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.Event, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return f.event, nil
}

func (f *fakeAdapter) QueryTransaction(ctx context.Context, externalID string) (*paymentdomain.Transaction, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.tx, nil
}

type harness struct {
	db      *gorm.DB
	svc     Service
	ledger  pendingdomain.Service
	adapter *fakeAdapter
}

func setup(t *testing.T) *harness {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.Exec(testSchema).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	fake := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	m := metrics.New()

	ledger := pendingservice.New(pendingservice.Params{
		DB: gdb, Log: log, Node: node, Clock: fake, Repo: pendingrepo.Provide(),
	})

	fulfill := fulfillment.New(fulfillment.Params{
		DB:        gdb,
		Log:       log,
		Node:      node,
		Clock:     fake,
		Orders:    orderrepo.Provide(),
		Coupons: couponservice.New(couponservice.Params{
			DB: gdb, Log: log, Clock: fake, Repo: couponrepo.Provide(),
		}),
		Cart:      cartrepo.Provide(),
		Users:     userrepo.Provide(),
		Ledger:    ledger,
		Generator: redemption.New(redemption.Policy{PrefixEncodesAmount: true}),
		Email:     email.NewNoop(log),
		Sink:      gameserver.NewNoop(log),
		Metrics:   m,
	})

	adapter := &fakeAdapter{provider: "stripe"}
	svc := New(Params{
		Log:      log,
		Registry: adapters.NewRegistry(adapter),
		Ledger:   ledger,
		Fulfill:  fulfill,
		Metrics:  m,
	})

	return &harness{db: gdb, svc: svc, ledger: ledger, adapter: adapter}
}

func (h *harness) openPayment(t *testing.T, externalID string) {
	t.Helper()
	_, err := h.ledger.Open(context.Background(), pendingdomain.OpenRequest{
		UserID:     42,
		Provider:   "stripe",
		ExternalID: externalID,
		Amount:     8820,
		Currency:   "MYR",
		Items: []pendingdomain.SnapshotItem{
			{PackageID: 100, PackageName: "1000 AECOIN", Quantity: 2, UnitPrice: 4900, AecoinAmount: 1000},
		},
		Meta: pendingdomain.Meta{Subtotal: 9800, Discount: 980},
	})
	require.NoError(t, err)
}

func (h *harness) orderCount(t *testing.T, externalID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, h.db.Raw(
		`SELECT COUNT(*) FROM orders WHERE payment_id = ?`, externalID,
	).Scan(&count).Error)
	return count
}

func (h *harness) ledgerStatus(t *testing.T, externalID string) pendingdomain.Status {
	t.Helper()
	payment, err := h.ledger.FindByExternalID(context.Background(), externalID)
	require.NoError(t, err)
	return payment.Status
}

func TestIngestWebhook_InvalidSignature(t *testing.T) {
	h := setup(t)
	h.openPayment(t, "pi_sig")
	h.adapter.verifyErr = paymentdomain.ErrInvalidSignature

	err := h.svc.IngestWebhook(context.Background(), "stripe", []byte(`{}`), http.Header{})
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
	assert.Zero(t, h.orderCount(t, "pi_sig"))
	assert.Equal(t, pendingdomain.StatusCreated, h.ledgerStatus(t, "pi_sig"))
}

func TestIngestWebhook_UnknownProvider(t *testing.T) {
	h := setup(t)

	err := h.svc.IngestWebhook(context.Background(), "nosuch", []byte(`{}`), http.Header{})
	assert.ErrorIs(t, err, paymentdomain.ErrProviderNotFound)
}

func TestIngestWebhook_Success(t *testing.T) {
	h := setup(t)
	h.openPayment(t, "pi_ok")
	h.adapter.event = &paymentdomain.Event{
		Provider: "stripe", ExternalID: "pi_ok",
		Type: paymentdomain.EventTypeSucceeded, Amount: 8820, Currency: "MYR",
	}

	err := h.svc.IngestWebhook(context.Background(), "stripe", []byte(`{}`), http.Header{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), h.orderCount(t, "pi_ok"))
	assert.Equal(t, pendingdomain.StatusSucceeded, h.ledgerStatus(t, "pi_ok"))
}

func TestIngestWebhook_ReplayIdempotent(t *testing.T) {
	h := setup(t)
	h.openPayment(t, "pi_twice")
	h.adapter.event = &paymentdomain.Event{
		Provider: "stripe", ExternalID: "pi_twice",
		Type: paymentdomain.EventTypeSucceeded, Amount: 8820, Currency: "MYR",
	}

	require.NoError(t, h.svc.IngestWebhook(context.Background(), "stripe", []byte(`{}`), http.Header{}))
	require.NoError(t, h.svc.IngestWebhook(context.Background(), "stripe", []byte(`{}`), http.Header{}))
	assert.Equal(t, int64(1), h.orderCount(t, "pi_twice"))
}

func TestIngestWebhook_AmountMismatch(t *testing.T) {
	h := setup(t)
	h.openPayment(t, "pi_short")
	h.adapter.event = &paymentdomain.Event{
		Provider: "stripe", ExternalID: "pi_short",
		Type: paymentdomain.EventTypeSucceeded, Amount: 100, Currency: "MYR",
	}

	err := h.svc.IngestWebhook(context.Background(), "stripe", []byte(`{}`), http.Header{})
	assert.ErrorIs(t, err, paymentdomain.ErrVerificationFailed)
	assert.Zero(t, h.orderCount(t, "pi_short"))
	assert.Equal(t, pendingdomain.StatusFailed, h.ledgerStatus(t, "pi_short"))
}

func TestIngestWebhook_CurrencyMismatch(t *testing.T) {
	h := setup(t)
	h.openPayment(t, "pi_wrongccy")
	h.adapter.event = &paymentdomain.Event{
		Provider: "stripe", ExternalID: "pi_wrongccy",
		Type: paymentdomain.EventTypeSucceeded, Amount: 8820, Currency: "USD",
	}

	err := h.svc.IngestWebhook(context.Background(), "stripe", []byte(`{}`), http.Header{})
	assert.ErrorIs(t, err, paymentdomain.ErrVerificationFailed)
	assert.Zero(t, h.orderCount(t, "pi_wrongccy"))
	assert.Equal(t, pendingdomain.StatusFailed, h.ledgerStatus(t, "pi_wrongccy"))
}

func TestIngestWebhook_CurrencyCaseInsensitive(t *testing.T) {
	h := setup(t)
	h.openPayment(t, "pi_lowerccy")
	h.adapter.event = &paymentdomain.Event{
		Provider: "stripe", ExternalID: "pi_lowerccy",
		Type: paymentdomain.EventTypeSucceeded, Amount: 8820, Currency: "myr",
	}

	require.NoError(t, h.svc.IngestWebhook(context.Background(), "stripe", []byte(`{}`), http.Header{}))
	assert.Equal(t, int64(1), h.orderCount(t, "pi_lowerccy"))
}

func TestIngestWebhook_FailureEvent(t *testing.T) {
	h := setup(t)
	h.openPayment(t, "pi_fail")
	h.adapter.event = &paymentdomain.Event{
		Provider: "stripe", ExternalID: "pi_fail",
		Type: paymentdomain.EventTypeFailed, Amount: 8820, Currency: "MYR",
	}

	require.NoError(t, h.svc.IngestWebhook(context.Background(), "stripe", []byte(`{}`), http.Header{}))
	assert.Zero(t, h.orderCount(t, "pi_fail"))
	assert.Equal(t, pendingdomain.StatusFailed, h.ledgerStatus(t, "pi_fail"))
}

func TestIngestWebhook_UntrackedPaymentRejected(t *testing.T) {
	h := setup(t)
	h.adapter.event = &paymentdomain.Event{
		Provider: "stripe", ExternalID: "pi_stranger",
		Type: paymentdomain.EventTypeSucceeded, Amount: 100, Currency: "MYR",
	}

	err := h.svc.IngestWebhook(context.Background(), "stripe", []byte(`{}`), http.Header{})
	assert.ErrorIs(t, err, pendingdomain.ErrNotFound)
}

func TestIngestWebhook_IgnoredEventAcknowledged(t *testing.T) {
	h := setup(t)
	h.adapter.parseErr = paymentdomain.ErrEventIgnored

	err := h.svc.IngestWebhook(context.Background(), "stripe", []byte(`{}`), http.Header{})
	assert.NoError(t, err)
}

func TestCompleteFromQuery_Settled(t *testing.T) {
	h := setup(t)
	h.openPayment(t, "pi_query")
	h.adapter.tx = &paymentdomain.Transaction{Settled: true, Amount: 8820, Currency: "MYR"}

	order, err := h.svc.CompleteFromQuery(context.Background(), "pi_query")
	require.NoError(t, err)
	assert.Equal(t, "pi_query", order.PaymentID)
	assert.Equal(t, pendingdomain.StatusSucceeded, h.ledgerStatus(t, "pi_query"))
}

func TestCompleteFromQuery_Unsettled(t *testing.T) {
	h := setup(t)
	h.openPayment(t, "pi_pending")
	h.adapter.tx = &paymentdomain.Transaction{Settled: false}

	_, err := h.svc.CompleteFromQuery(context.Background(), "pi_pending")
	assert.ErrorIs(t, err, paymentdomain.ErrPaymentNotSettled)
	assert.Equal(t, pendingdomain.StatusCreated, h.ledgerStatus(t, "pi_pending"))
}

func TestCompleteFromQuery_AmountMismatch(t *testing.T) {
	h := setup(t)
	h.openPayment(t, "pi_qshort")
	h.adapter.tx = &paymentdomain.Transaction{Settled: true, Amount: 1, Currency: "MYR"}

	_, err := h.svc.CompleteFromQuery(context.Background(), "pi_qshort")
	assert.ErrorIs(t, err, paymentdomain.ErrVerificationFailed)
	assert.Equal(t, pendingdomain.StatusFailed, h.ledgerStatus(t, "pi_qshort"))
}

func TestCompleteFromQuery_UnknownPayment(t *testing.T) {
	h := setup(t)

	_, err := h.svc.CompleteFromQuery(context.Background(), "pi_ghost")
	assert.ErrorIs(t, err, pendingdomain.ErrNotFound)
}

func TestCompleteFromQuery_ReplayReturnsSameOrder(t *testing.T) {
	h := setup(t)
	h.openPayment(t, "pi_qtwice")
	h.adapter.tx = &paymentdomain.Transaction{Settled: true, Amount: 8820, Currency: "MYR"}

	first, err := h.svc.CompleteFromQuery(context.Background(), "pi_qtwice")
	require.NoError(t, err)
	second, err := h.svc.CompleteFromQuery(context.Background(), "pi_qtwice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1), h.orderCount(t, "pi_qtwice"))
}
