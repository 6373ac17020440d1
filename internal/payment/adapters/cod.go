package adapters

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/taskora/internal/payment/domain"
)

// CashOnDeliveryGateway settles offline: no order to open, every capture is
// accepted as completed.
type CashOnDeliveryGateway struct{}

func NewCashOnDeliveryGateway() *CashOnDeliveryGateway {
	return &CashOnDeliveryGateway{}
}

func (g *CashOnDeliveryGateway) Name() string { return domain.MethodCashOnDelivery }

func (g *CashOnDeliveryGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, currency string) (*domain.GatewayResult, error) {
	return &domain.GatewayResult{
		ID:     "cod-" + time.Now().UTC().Format("20060102150405"),
		Status: domain.GatewayStatusCreated,
		Amount: amount.StringFixed(2),
	}, nil
}

func (g *CashOnDeliveryGateway) CaptureOrder(ctx context.Context, orderID string) (*domain.GatewayResult, error) {
	return &domain.GatewayResult{
		ID:     orderID,
		Status: domain.GatewayStatusCompleted,
	}, nil
}
