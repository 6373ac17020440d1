package review

import (
	"github.com/smallbiznis/taskora/internal/review/repository"
	"github.com/smallbiznis/taskora/internal/review/service"
	"go.uber.org/fx"
)

var Module = fx.Module("review.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
