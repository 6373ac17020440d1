package adapters

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/taskora/internal/payment/domain"
	"github.com/smallbiznis/taskora/internal/providers/paypal"
)

// PayPalGateway adapts the PayPal Orders v2 client to the gateway contract.
type PayPalGateway struct {
	client *paypal.Client
}

func NewPayPalGateway(client *paypal.Client) *PayPalGateway {
	return &PayPalGateway{client: client}
}

func (g *PayPalGateway) Name() string { return domain.MethodPayPal }

func (g *PayPalGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, currency string) (*domain.GatewayResult, error) {
	order, err := g.client.CreateOrder(ctx, amount.StringFixed(2), currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	return &domain.GatewayResult{
		ID:     order.ID,
		Status: order.Status,
	}, nil
}

func (g *PayPalGateway) CaptureOrder(ctx context.Context, orderID string) (*domain.GatewayResult, error) {
	order, err := g.client.CaptureOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}

	result := &domain.GatewayResult{
		ID:           order.ID,
		Status:       order.Status,
		EmailAddress: order.Payer.EmailAddress,
	}
	if len(order.PurchaseUnits) > 0 {
		unit := order.PurchaseUnits[0]
		if len(unit.Payments.Captures) > 0 {
			result.Amount = unit.Payments.Captures[0].Amount.Value
		} else {
			result.Amount = unit.Amount.Value
		}
	}
	return result, nil
}
