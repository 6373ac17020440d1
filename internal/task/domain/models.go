// Package domain contains persistence models for posted tasks.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TaskStatus represents task lifecycle states.
type TaskStatus string

const (
	TaskStatusOpen     TaskStatus = "OPEN"
	TaskStatusAssigned TaskStatus = "ASSIGNED"
)

// Category is a reference row tasks are grouped under.
type Category struct {
	ID   snowflake.ID `json:"id" gorm:"primaryKey"`
	Name string       `json:"name" gorm:"type:text;not null"`
	Slug string       `json:"slug" gorm:"type:text;not null;uniqueIndex"`
}

// TableName sets the database table name.
func (Category) TableName() string { return "categories" }

// Task represents a posted job a client wants performed.
type Task struct {
	ID          snowflake.ID    `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"type:text;not null"`
	Slug        string          `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Images      datatypes.JSON  `json:"images" gorm:"type:jsonb"`
	CategoryID  snowflake.ID    `json:"category_id" gorm:"not null;index"`
	Status      TaskStatus      `json:"status" gorm:"type:text;not null;default:'OPEN'"`
	CreatedByID snowflake.ID    `json:"created_by_id" gorm:"not null;index"`

	// Soft delete: archived tasks stay for invoice history but leave listings.
	IsArchived bool       `json:"is_archived" gorm:"not null;default:false"`
	ArchivedAt *time.Time `json:"archived_at"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// TableName sets the database table name.
func (Task) TableName() string { return "tasks" }
