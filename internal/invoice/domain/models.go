// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	userdomain "github.com/smallbiznis/taskora/internal/user/domain"
)

// Invoice represents a billing document for completed work.
type Invoice struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	InvoiceNumber string          `json:"invoice_number" gorm:"type:text;not null;uniqueIndex"`
	ClientID      snowflake.ID    `json:"client_id" gorm:"not null;index"`
	ContractorID  snowflake.ID    `json:"contractor_id" gorm:"not null;index"`
	TotalPrice    decimal.Decimal `json:"total_price" gorm:"type:numeric(12,2);not null"`
	CartID        *snowflake.ID   `json:"cart_id,omitempty" gorm:"index"`
	PaymentID     *snowflake.ID   `json:"payment_id,omitempty" gorm:"index"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Items      []InvoiceItem    `json:"items,omitempty" gorm:"foreignKey:InvoiceID"`
	Client     *userdomain.User `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Contractor *userdomain.User `json:"contractor,omitempty" gorm:"foreignKey:ContractorID"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem represents a line on an invoice. Each line links back to the
// task assignment it bills for invoice-history tracing.
type InvoiceItem struct {
	ID           snowflake.ID    `json:"id" gorm:"primaryKey"`
	InvoiceID    snowflake.ID    `json:"invoice_id" gorm:"not null;index"`
	TaskID       snowflake.ID    `json:"task_id" gorm:"not null;index"`
	AssignmentID snowflake.ID    `json:"assignment_id" gorm:"not null;index"`
	Name         string          `json:"name" gorm:"type:text;not null"`
	Qty          int64           `json:"qty" gorm:"not null"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Hours        float64         `json:"hours" gorm:"not null;default:0"`
	CreatedAt    time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }
