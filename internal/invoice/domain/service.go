package domain

import (
	"context"
	"errors"
	"io"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("invoice_not_found")
	ErrAssignmentNotFound = errors.New("no task assignment found between client and contractor for this task")
	ErrInvalidItems       = errors.New("invoice requires at least one item")
	ErrNumberExists       = errors.New("invoice number already exists")
	ErrNotParty           = errors.New("only the invoice parties may view it")
)

type CreateInvoiceItem struct {
	TaskID string `json:"task_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Qty    int64  `json:"qty"`
	// Quantity is the legacy field name; Qty wins when both are set.
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price" binding:"required"`
	Hours    float64         `json:"hours"`
}

type CreateInvoiceRequest struct {
	ClientID     string              `json:"client_id" binding:"required"`
	ContractorID string              `json:"contractor_id" binding:"required"`
	Items        []CreateInvoiceItem `json:"items" binding:"required,min=1"`
}

type UpdateInvoiceRequest struct {
	InvoiceNumber string              `json:"invoice_number" binding:"required"`
	Items         []CreateInvoiceItem `json:"items" binding:"required"`
}

type Repository interface {
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Invoice, error)
	ListByCart(ctx context.Context, db *gorm.DB, cartID snowflake.ID) ([]Invoice, error)
	ListByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) ([]Invoice, error)
	Create(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	CreateItem(ctx context.Context, db *gorm.DB, item *InvoiceItem) error
	UpdateTotal(ctx context.Context, db *gorm.DB, id snowflake.ID, total decimal.Decimal) error
}

type Service interface {
	Create(ctx context.Context, contractorID snowflake.ID, req CreateInvoiceRequest) (*Invoice, error)
	// Update recomputes the invoice total from the submitted item list and
	// updates only total_price. Item rows are left untouched.
	Update(ctx context.Context, req UpdateInvoiceRequest) (*Invoice, error)
	// GetByNumber returns nil (not an error) when no invoice matches.
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	RenderPDF(ctx context.Context, number string) (io.Reader, error)
}
