package checkout

import (
	"github.com/rjvb7424/learn-it-now/internal/checkout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("checkout.service",
	fx.Provide(service.New),
)
