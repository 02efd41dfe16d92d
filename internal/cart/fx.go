package cart

import (
	"github.com/nightmarket/aestore/internal/cart/repository"
	"github.com/nightmarket/aestore/internal/cart/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cart.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
