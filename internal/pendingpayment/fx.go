package pendingpayment

import (
	"github.com/nightmarket/aestore/internal/pendingpayment/repository"
	"github.com/nightmarket/aestore/internal/pendingpayment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pendingpayment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
