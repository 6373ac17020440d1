package adapters

import (
	"github.com/smallbiznis/taskora/internal/config"
	"github.com/smallbiznis/taskora/internal/providers/paypal"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.adapters",
	fx.Provide(newPayPalClient),
	fx.Provide(newRegistry),
)

func newPayPalClient(cfg config.Config) *paypal.Client {
	return paypal.NewClient(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret)
}

func newRegistry(client *paypal.Client) *Registry {
	return NewRegistry(
		NewPayPalGateway(client),
		NewCashOnDeliveryGateway(),
	)
}
