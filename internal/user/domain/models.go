// Package domain contains persistence models for marketplace users.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role distinguishes the two marketplace parties.
type Role string

const (
	RoleClient     Role = "client"
	RoleContractor Role = "contractor"
)

// User represents a registered client or contractor.
type User struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	Email        string       `json:"email" gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string       `json:"-" gorm:"type:text;not null"`
	DisplayName  string       `json:"display_name" gorm:"type:text;not null"`
	Role         Role         `json:"role" gorm:"type:text;not null"`

	// Denormalized review aggregates, recomputed on every review write.
	ContractorRating      float64 `json:"contractor_rating" gorm:"not null;default:0"`
	ContractorReviewCount int64   `json:"contractor_review_count" gorm:"not null;default:0"`
	ClientRating          float64 `json:"client_rating" gorm:"not null;default:0"`
	ClientReviewCount     int64   `json:"client_review_count" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
