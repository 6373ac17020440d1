// Package pdf renders invoices and payment receipts.
package pdf

import (
	"context"
	"io"
)

// LineItem is one billed line on a rendered document.
type LineItem struct {
	Description string
	Qty         int64
	UnitPrice   string
	Amount      string
}

// InvoiceData carries everything the invoice layout needs.
type InvoiceData struct {
	InvoiceNumber string
	IssueDate     string
	Currency      string

	ClientName      string
	ClientEmail     string
	ContractorName  string
	ContractorEmail string

	Items []LineItem

	Subtotal string
	Tax      string
	Total    string
}

// ReceiptData extends the invoice layout with payment facts.
type ReceiptData struct {
	InvoiceData
	DatePaid      string
	PaymentMethod string
}

type Provider interface {
	GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error)
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}

// NoOpProvider renders nothing. Used in tests.
type NoOpProvider struct{}

func (p *NoOpProvider) GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error) {
	return nil, nil
}

func (p *NoOpProvider) GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error) {
	return nil, nil
}
