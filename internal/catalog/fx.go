package catalog

import (
	"github.com/nightmarket/aestore/internal/catalog/repository"
	"github.com/nightmarket/aestore/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
