package course

import (
	"github.com/rjvb7424/learn-it-now/internal/course/repository"
	"github.com/rjvb7424/learn-it-now/internal/course/service"
	"go.uber.org/fx"
)

var Module = fx.Module("course.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
