package order

import (
	"github.com/nightmarket/aestore/internal/order/repository"
	"github.com/nightmarket/aestore/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
