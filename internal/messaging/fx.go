package messaging

import (
	messagingdomain "github.com/smallbiznis/taskora/internal/messaging/domain"
	"github.com/smallbiznis/taskora/internal/messaging/repository"
	"github.com/smallbiznis/taskora/internal/messaging/service"
	"github.com/smallbiznis/taskora/internal/notify"
	"go.uber.org/fx"
)

// Module wires the messaging service and exposes it both as the conversation
// API and as the system-notification dispatcher other services depend on.
var Module = fx.Module("messaging.service",
	fx.Provide(repository.Provide),
	fx.Provide(
		service.NewService,
		func(s *service.Service) messagingdomain.Service { return s },
		func(s *service.Service) notify.Dispatcher { return s },
	),
)
