// Package domain contains payment models and the gateway contract.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Payment methods accepted at checkout.
const (
	MethodPayPal         = "paypal"
	MethodCashOnDelivery = "cod"
)

// Payment is an aggregated charge covering one or more invoices.
type Payment struct {
	ID            snowflake.ID      `json:"id" gorm:"primaryKey"`
	UserID        snowflake.ID      `json:"user_id" gorm:"not null;index"`
	Amount        decimal.Decimal   `json:"amount" gorm:"type:numeric(12,2);not null"`
	PaymentMethod string            `json:"payment_method" gorm:"type:text;not null"`
	IsPaid        bool              `json:"is_paid" gorm:"not null;default:false"`
	PaidAt        *time.Time        `json:"paid_at"`
	PaymentResult datatypes.JSONMap `json:"payment_result" gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt     time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// GatewayResult is the canonical capture outcome stored in payment_result.
type GatewayResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	EmailAddress string `json:"email_address"`
	Amount       string `json:"amount"`
}

// Gateway is one payment provider integration.
type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency string) (*GatewayResult, error)
	CaptureOrder(ctx context.Context, orderID string) (*GatewayResult, error)
}

const (
	// GatewayStatusCompleted is the only capture status accepted as settled.
	GatewayStatusCompleted = "COMPLETED"
	GatewayStatusCreated   = "CREATED"
)

var (
	ErrNotFound        = errors.New("payment_not_found")
	ErrCartEmpty       = errors.New("cart is empty")
	ErrMethodRequired  = errors.New("no payment method selected")
	ErrUnknownMethod   = errors.New("unknown payment method")
	ErrAlreadyPaid     = errors.New("payment is already paid")
	ErrCaptureMismatch = errors.New("payment could not be verified")
	ErrGateway         = errors.New("payment gateway error")
	ErrOrderNotCreated = errors.New("no gateway order exists for this payment")
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	Create(ctx context.Context, db *gorm.DB, payment *Payment) error
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, columns map[string]any) error
	// ReparentCartInvoices moves every invoice on the cart onto the payment.
	ReparentCartInvoices(ctx context.Context, db *gorm.DB, cartID, paymentID snowflake.ID) (int64, error)
	ClearCart(ctx context.Context, db *gorm.DB, cartID snowflake.ID) error
}

type Service interface {
	// CreateFromCart converts the session cart into a pending payment inside
	// one transaction: payment row, invoice re-parenting, cart cleared.
	CreateFromCart(ctx context.Context, userID snowflake.ID, sessionCartID, method string) (*Payment, error)
	// CreatePayPalOrder registers the pending payment with the gateway and
	// stores the returned order id for later capture verification.
	CreatePayPalOrder(ctx context.Context, paymentID string) (*GatewayResult, error)
	// ApprovePayPal captures funds and verifies the gateway's order id and
	// status against the stored pending record before marking paid.
	ApprovePayPal(ctx context.Context, paymentID string, orderID string) (*Payment, error)
	// MarkPaid transitions pending -> paid exactly once.
	MarkPaid(ctx context.Context, paymentID string, result GatewayResult) (*Payment, error)
	GetByID(ctx context.Context, paymentID string) (*Payment, error)
}
