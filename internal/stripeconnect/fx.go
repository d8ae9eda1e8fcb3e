package stripeconnect

import (
	"github.com/rjvb7424/learn-it-now/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("stripeconnect",
	fx.Provide(func(cfg config.Config) (Client, error) {
		return NewClient(cfg.StripeSecretKey)
	}),
)
