package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	cartdomain "github.com/smallbiznis/taskora/internal/cart/domain"
	cartrepo "github.com/smallbiznis/taskora/internal/cart/repository"
	invoicedomain "github.com/smallbiznis/taskora/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/taskora/internal/invoice/repository"
	"github.com/smallbiznis/taskora/internal/payment/adapters"
	paymentdomain "github.com/smallbiznis/taskora/internal/payment/domain"
	paymentrepo "github.com/smallbiznis/taskora/internal/payment/repository"
	paymentservice "github.com/smallbiznis/taskora/internal/payment/service"
	"github.com/smallbiznis/taskora/internal/providers/email"
	"github.com/smallbiznis/taskora/internal/providers/pdf"
	userdomain "github.com/smallbiznis/taskora/internal/user/domain"
	userrepo "github.com/smallbiznis/taskora/internal/user/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type dispatcherStub struct {
	mu    sync.Mutex
	calls int
}

func (d *dispatcherStub) SystemMessage(ctx context.Context, assignmentID snowflake.ID, text string, metadata map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return nil
}

// gatewayStub stands in for the PayPal integration.
type gatewayStub struct {
	orderID       string
	captureID     string
	captureStatus string
}

func (g *gatewayStub) Name() string { return paymentdomain.MethodPayPal }

func (g *gatewayStub) CreateOrder(ctx context.Context, amount decimal.Decimal, currency string) (*paymentdomain.GatewayResult, error) {
	return &paymentdomain.GatewayResult{
		ID:     g.orderID,
		Status: paymentdomain.GatewayStatusCreated,
		Amount: amount.StringFixed(2),
	}, nil
}

func (g *gatewayStub) CaptureOrder(ctx context.Context, orderID string) (*paymentdomain.GatewayResult, error) {
	id := g.captureID
	if id == "" {
		id = orderID
	}
	status := g.captureStatus
	if status == "" {
		status = paymentdomain.GatewayStatusCompleted
	}
	return &paymentdomain.GatewayResult{
		ID:           id,
		Status:       status,
		EmailAddress: "payer@example.com",
	}, nil
}

type fixture struct {
	svc    paymentdomain.Service
	db     *gorm.DB
	node   *snowflake.Node
	userID snowflake.ID
}

func setup(t *testing.T, gateway paymentdomain.Gateway) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&cartdomain.Cart{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&paymentdomain.Payment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := paymentservice.NewService(paymentservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        paymentrepo.Provide(),
		CartRepo:    cartrepo.Provide(),
		InvoiceRepo: invoicerepo.Provide(),
		UserRepo:    userrepo.Provide(),
		Registry:    adapters.NewRegistry(gateway, adapters.NewCashOnDeliveryGateway()),
		PDF:         &pdf.NoOpProvider{},
		Email:       &email.NoOpProvider{},
		Dispatcher:  &dispatcherStub{},
	})

	userID := node.Generate()
	require.NoError(t, db.Create(&userdomain.User{
		ID: userID, Email: "payer@example.com", PasswordHash: "x",
		DisplayName: "Payer", Role: userdomain.RoleClient,
	}).Error)

	return fixture{svc: svc, db: db, node: node, userID: userID}
}

func (f fixture) seedCartWithInvoice(t *testing.T, sessionCartID string, total int64) *cartdomain.Cart {
	t.Helper()

	cart := &cartdomain.Cart{
		ID:            f.node.Generate(),
		SessionCartID: sessionCartID,
		TotalPrice:    decimal.NewFromInt(total),
	}
	require.NoError(t, f.db.Create(cart).Error)

	invoice := &invoicedomain.Invoice{
		ID:            f.node.Generate(),
		InvoiceNumber: fmt.Sprintf("INV-TEST-%d", f.node.Generate()),
		ClientID:      f.userID,
		ContractorID:  f.node.Generate(),
		TotalPrice:    decimal.NewFromInt(total),
		CartID:        &cart.ID,
	}
	require.NoError(t, f.db.Create(invoice).Error)
	return cart
}

func TestCreateFromCartValidatesMethod(t *testing.T) {
	ctx := context.Background()
	f := setup(t, &gatewayStub{orderID: "order-1"})

	_, err := f.svc.CreateFromCart(ctx, f.userID, "session-a", "")
	require.ErrorIs(t, err, paymentdomain.ErrMethodRequired)

	_, err = f.svc.CreateFromCart(ctx, f.userID, "session-a", "wire")
	require.ErrorIs(t, err, paymentdomain.ErrUnknownMethod)
}

func TestCreateFromCartEmptyCart(t *testing.T) {
	ctx := context.Background()
	f := setup(t, &gatewayStub{orderID: "order-1"})

	_, err := f.svc.CreateFromCart(ctx, f.userID, "session-a", paymentdomain.MethodCashOnDelivery)
	require.ErrorIs(t, err, paymentdomain.ErrCartEmpty)

	// A cart row with nothing attached is still an empty cart.
	require.NoError(t, f.db.Create(&cartdomain.Cart{
		ID:            f.node.Generate(),
		SessionCartID: "session-b",
	}).Error)
	_, err = f.svc.CreateFromCart(ctx, f.userID, "session-b", paymentdomain.MethodCashOnDelivery)
	require.ErrorIs(t, err, paymentdomain.ErrCartEmpty)
}

func TestCreateFromCartMovesInvoicesAndDropsCart(t *testing.T) {
	ctx := context.Background()
	f := setup(t, &gatewayStub{orderID: "order-1"})
	cart := f.seedCartWithInvoice(t, "session-a", 150)

	payment, err := f.svc.CreateFromCart(ctx, f.userID, "session-a", paymentdomain.MethodCashOnDelivery)
	require.NoError(t, err)
	require.Equal(t, "150.00", payment.Amount.StringFixed(2))
	require.False(t, payment.IsPaid)

	var invoice invoicedomain.Invoice
	require.NoError(t, f.db.First(&invoice, "payment_id = ?", payment.ID).Error)
	require.Nil(t, invoice.CartID)

	var carts int64
	require.NoError(t, f.db.Model(&cartdomain.Cart{}).Where("id = ?", cart.ID).Count(&carts).Error)
	require.Zero(t, carts)
}

func TestPayPalOrderAndCapture(t *testing.T) {
	ctx := context.Background()
	f := setup(t, &gatewayStub{orderID: "order-1"})
	f.seedCartWithInvoice(t, "session-a", 100)

	payment, err := f.svc.CreateFromCart(ctx, f.userID, "session-a", paymentdomain.MethodPayPal)
	require.NoError(t, err)

	order, err := f.svc.CreatePayPalOrder(ctx, payment.ID.String())
	require.NoError(t, err)
	require.Equal(t, "order-1", order.ID)

	_, err = f.svc.ApprovePayPal(ctx, payment.ID.String(), "order-2")
	require.ErrorIs(t, err, paymentdomain.ErrCaptureMismatch)

	paid, err := f.svc.ApprovePayPal(ctx, payment.ID.String(), "order-1")
	require.NoError(t, err)
	require.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	require.Equal(t, "order-1", paid.PaymentResult["id"])
	require.Equal(t, paymentdomain.GatewayStatusCompleted, paid.PaymentResult["status"])

	_, err = f.svc.ApprovePayPal(ctx, payment.ID.String(), "order-1")
	require.ErrorIs(t, err, paymentdomain.ErrAlreadyPaid)
}

func TestApprovePayPalRequiresOrder(t *testing.T) {
	ctx := context.Background()
	f := setup(t, &gatewayStub{orderID: "order-1"})
	f.seedCartWithInvoice(t, "session-a", 100)

	payment, err := f.svc.CreateFromCart(ctx, f.userID, "session-a", paymentdomain.MethodPayPal)
	require.NoError(t, err)

	_, err = f.svc.ApprovePayPal(ctx, payment.ID.String(), "order-1")
	require.ErrorIs(t, err, paymentdomain.ErrOrderNotCreated)
}

func TestApprovePayPalRejectsIncompleteCapture(t *testing.T) {
	ctx := context.Background()
	f := setup(t, &gatewayStub{orderID: "order-1", captureStatus: "PENDING"})
	f.seedCartWithInvoice(t, "session-a", 100)

	payment, err := f.svc.CreateFromCart(ctx, f.userID, "session-a", paymentdomain.MethodPayPal)
	require.NoError(t, err)

	_, err = f.svc.CreatePayPalOrder(ctx, payment.ID.String())
	require.NoError(t, err)

	_, err = f.svc.ApprovePayPal(ctx, payment.ID.String(), "order-1")
	require.ErrorIs(t, err, paymentdomain.ErrCaptureMismatch)

	reloaded, err := f.svc.GetByID(ctx, payment.ID.String())
	require.NoError(t, err)
	require.False(t, reloaded.IsPaid)
}

func TestMarkPaidExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := setup(t, &gatewayStub{orderID: "order-1"})
	f.seedCartWithInvoice(t, "session-a", 100)

	payment, err := f.svc.CreateFromCart(ctx, f.userID, "session-a", paymentdomain.MethodCashOnDelivery)
	require.NoError(t, err)

	paid, err := f.svc.MarkPaid(ctx, payment.ID.String(), paymentdomain.GatewayResult{
		ID:     "cod-1",
		Status: paymentdomain.GatewayStatusCompleted,
	})
	require.NoError(t, err)
	require.True(t, paid.IsPaid)

	_, err = f.svc.MarkPaid(ctx, payment.ID.String(), paymentdomain.GatewayResult{
		ID:     "cod-1",
		Status: paymentdomain.GatewayStatusCompleted,
	})
	require.ErrorIs(t, err, paymentdomain.ErrAlreadyPaid)
}
