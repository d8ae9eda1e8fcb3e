package payout

import (
	"github.com/rjvb7424/learn-it-now/internal/payout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payout.service",
	fx.Provide(service.New),
)
