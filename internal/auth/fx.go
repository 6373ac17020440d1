package auth

import (
	"github.com/smallbiznis/taskora/internal/auth/repository"
	"github.com/smallbiznis/taskora/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
