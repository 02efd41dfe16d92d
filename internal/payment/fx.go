package payment

import (
	"github.com/nightmarket/aestore/internal/config"
	"github.com/nightmarket/aestore/internal/payment/adapters"
	"github.com/nightmarket/aestore/internal/payment/adapters/stripe"
	"github.com/nightmarket/aestore/internal/payment/adapters/toyyibpay"
	"go.uber.org/fx"
)

func NewRegistry(cfg *config.Config) *adapters.Registry {
	return adapters.NewRegistry(
		stripe.New(cfg.Stripe),
		toyyibpay.New(cfg.ToyyibPay),
	)
}

var Module = fx.Module("payment",
	fx.Provide(NewRegistry),
)
