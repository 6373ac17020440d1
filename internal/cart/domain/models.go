// Package domain contains the session-cart models.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/taskora/internal/invoice/domain"
	"gorm.io/gorm"
)

// Cart is a session-scoped holding area for unpaid invoices. It is keyed by
// a cookie value and deleted on sign-out.
type Cart struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	UserID        *snowflake.ID   `json:"user_id,omitempty" gorm:"index"`
	SessionCartID string          `json:"session_cart_id" gorm:"type:text;not null;uniqueIndex"`
	TotalPrice    decimal.Decimal `json:"total_price" gorm:"type:numeric(12,2);not null;default:0"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Invoices []invoicedomain.Invoice `json:"invoices,omitempty" gorm:"foreignKey:CartID"`
}

// TableName sets the database table name.
func (Cart) TableName() string { return "carts" }

var (
	ErrNotFound       = errors.New("cart_not_found")
	ErrInvoiceMissing = errors.New("invoice_not_found")
	ErrInvoicePaid    = errors.New("invoice is already attached to a payment")
)

type Repository interface {
	FindBySessionID(ctx context.Context, db *gorm.DB, sessionCartID string) (*Cart, error)
	Create(ctx context.Context, db *gorm.DB, cart *Cart) error
	AttachInvoice(ctx context.Context, db *gorm.DB, cartID, invoiceID snowflake.ID) error
	RecomputeTotal(ctx context.Context, db *gorm.DB, cartID snowflake.ID) (decimal.Decimal, error)
	AdoptUser(ctx context.Context, db *gorm.DB, sessionCartID string, userID snowflake.ID) error
	DeleteBySessionID(ctx context.Context, db *gorm.DB, sessionCartID string) error
}

type Service interface {
	// GetOrCreate resolves the cart for the session cookie, creating one on
	// first use and adopting it onto the user once signed in.
	GetOrCreate(ctx context.Context, sessionCartID string, userID *snowflake.ID) (*Cart, error)
	AddInvoice(ctx context.Context, sessionCartID string, invoiceNumber string) (*Cart, error)
	Get(ctx context.Context, sessionCartID string) (*Cart, error)
}
