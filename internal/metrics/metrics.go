package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics counts the reconciliation paths that matter operationally:
// provider notifications by outcome, orders fulfilled, codes issued, and
// best-effort side effects that failed and may need manual follow-up.
type Metrics struct {
	Registry *prometheus.Registry

	PaymentEvents        *prometheus.CounterVec
	OrdersFulfilled      prometheus.Counter
	CodesIssued          prometheus.Counter
	ProvisioningFailures *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		PaymentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aestore_payment_events_total",
			Help: "Provider payment notifications by provider and outcome.",
		}, []string{"provider", "result"}),
		OrdersFulfilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aestore_orders_fulfilled_total",
			Help: "Orders fulfilled end to end.",
		}),
		CodesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aestore_redemption_codes_issued_total",
			Help: "Redemption codes written to the orders database.",
		}),
		ProvisioningFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aestore_provisioning_failures_total",
			Help: "Best-effort side effects that failed, by stage.",
		}, []string{"stage"}),
	}

	registry.MustRegister(
		m.PaymentEvents,
		m.OrdersFulfilled,
		m.CodesIssued,
		m.ProvisioningFailures,
	)
	return m
}

var Module = fx.Module("metrics",
	fx.Provide(New),
)
