package purchase

import (
	"github.com/rjvb7424/learn-it-now/internal/purchase/repository"
	"github.com/rjvb7424/learn-it-now/internal/purchase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("purchase.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
