package payment

import (
	"github.com/smallbiznis/taskora/internal/payment/adapters"
	"github.com/smallbiznis/taskora/internal/payment/repository"
	"github.com/smallbiznis/taskora/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	adapters.Module,
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
