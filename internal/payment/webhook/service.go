package webhook

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nightmarket/aestore/internal/fulfillment"
	"github.com/nightmarket/aestore/internal/metrics"
	orderdomain "github.com/nightmarket/aestore/internal/order/domain"
	"github.com/nightmarket/aestore/internal/payment/adapters"
	paymentdomain "github.com/nightmarket/aestore/internal/payment/domain"
	pendingdomain "github.com/nightmarket/aestore/internal/pendingpayment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Service reconciles provider notifications against the pending payment
// ledger. Both entry points end in the same verification: the ledger row is
// the source of truth for what was owed, the provider only says what was
// paid.
type Service interface {
	// IngestWebhook handles a signed push notification. A nil return means
	// the event was consumed and must be acknowledged. Verification
	// failures, mismatches and untracked payments surface as errors and
	// answer 4xx.
	IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error
	// CompleteFromQuery settles a payment by asking the provider directly.
	// Serves redirect returns, server callbacks and client fallback polling.
	CompleteFromQuery(ctx context.Context, externalID string) (*orderdomain.Order, error)
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Registry *adapters.Registry
	Ledger   pendingdomain.Service
	Fulfill  fulfillment.Service
	Metrics  *metrics.Metrics
}

type service struct {
	log      *zap.Logger
	registry *adapters.Registry
	ledger   pendingdomain.Service
	fulfill  fulfillment.Service
	metrics  *metrics.Metrics
}

func New(p Params) Service {
	return &service{
		log:      p.Log.Named("payment.webhook"),
		registry: p.Registry,
		ledger:   p.Ledger,
		fulfill:  p.Fulfill,
		metrics:  p.Metrics,
	}
}

func (s *service) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	adapter, err := s.registry.Get(provider)
	if err != nil {
		return err
	}

	if err := adapter.Verify(ctx, payload, headers); err != nil {
		s.metrics.PaymentEvents.WithLabelValues(provider, "rejected").Inc()
		return err
	}

	event, err := adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			s.metrics.PaymentEvents.WithLabelValues(provider, "ignored").Inc()
			return nil
		}
		return err
	}

	payment, err := s.ledger.FindByExternalID(ctx, event.ExternalID)
	if err != nil {
		if errors.Is(err, pendingdomain.ErrNotFound) {
			// An authentic event with no ledger row is an integrity failure.
			// Never fabricate an order from an untracked payment.
			s.metrics.PaymentEvents.WithLabelValues(provider, "unmatched").Inc()
			s.log.Error("webhook for untracked payment",
				zap.String("provider", provider),
				zap.String("external_id", event.ExternalID),
			)
		}
		return err
	}

	if event.Type == paymentdomain.EventTypeFailed {
		if _, err := s.ledger.MarkFailed(ctx, event.ExternalID); err != nil {
			return err
		}
		s.metrics.PaymentEvents.WithLabelValues(provider, "failed").Inc()
		return nil
	}

	if !s.amountsMatch(payment, event.Amount, event.Currency) {
		s.recordMismatch(ctx, provider, payment, event.Amount, event.Currency)
		return paymentdomain.ErrVerificationFailed
	}
	if payment.Status == pendingdomain.StatusFailed {
		// A success report cannot resurrect a payment we already failed.
		s.metrics.PaymentEvents.WithLabelValues(provider, "stale").Inc()
		return nil
	}

	if _, err := s.fulfill.Fulfill(ctx, payment); err != nil {
		return err
	}
	s.metrics.PaymentEvents.WithLabelValues(provider, "succeeded").Inc()
	return nil
}

func (s *service) CompleteFromQuery(ctx context.Context, externalID string) (*orderdomain.Order, error) {
	payment, err := s.ledger.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	adapter, err := s.registry.Get(payment.Provider)
	if err != nil {
		return nil, err
	}

	tx, err := adapter.QueryTransaction(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if !tx.Settled {
		s.metrics.PaymentEvents.WithLabelValues(payment.Provider, "unsettled").Inc()
		return nil, paymentdomain.ErrPaymentNotSettled
	}

	if !s.amountsMatch(payment, tx.Amount, tx.Currency) {
		s.recordMismatch(ctx, payment.Provider, payment, tx.Amount, tx.Currency)
		return nil, paymentdomain.ErrVerificationFailed
	}
	if payment.Status == pendingdomain.StatusFailed {
		return nil, paymentdomain.ErrVerificationFailed
	}

	order, err := s.fulfill.Fulfill(ctx, payment)
	if err != nil {
		return nil, err
	}
	s.metrics.PaymentEvents.WithLabelValues(payment.Provider, "succeeded").Inc()
	return order, nil
}

// amountsMatch compares what the provider settled against what the ledger
// says is owed. Amounts are exact minor units; currency compares
// case-insensitively.
func (s *service) amountsMatch(payment pendingdomain.PendingPayment, amount int64, currency string) bool {
	return amount == payment.Amount && strings.EqualFold(currency, payment.Currency)
}

func (s *service) recordMismatch(ctx context.Context, provider string, payment pendingdomain.PendingPayment, amount int64, currency string) {
	if _, err := s.ledger.MarkFailed(ctx, payment.ExternalID); err != nil {
		s.log.Error("failed to mark mismatched payment",
			zap.String("external_id", payment.ExternalID),
			zap.Error(err),
		)
	}
	s.metrics.PaymentEvents.WithLabelValues(provider, "mismatch").Inc()
	s.log.Error("settled amount does not match ledger",
		zap.String("external_id", payment.ExternalID),
		zap.Int64("ledger_amount", payment.Amount),
		zap.Int64("settled_amount", amount),
		zap.String("ledger_currency", payment.Currency),
		zap.String("settled_currency", currency),
	)
}

var Module = fx.Module("payment.webhook",
	fx.Provide(New),
)
