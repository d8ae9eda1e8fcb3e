package user

import (
	"github.com/rjvb7424/learn-it-now/internal/user/repository"
	"github.com/rjvb7424/learn-it-now/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
