package coupon

import (
	"github.com/nightmarket/aestore/internal/coupon/repository"
	"github.com/nightmarket/aestore/internal/coupon/service"
	"go.uber.org/fx"
)

var Module = fx.Module("coupon.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
