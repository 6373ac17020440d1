package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("user_not_found")
	ErrInvalidEmail = errors.New("invalid_email")
)

// Repository is the data access surface shared with the review service,
// which updates the denormalized rating columns.
type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	Create(ctx context.Context, db *gorm.DB, user *User) error
	UpdateRating(ctx context.Context, db *gorm.DB, userID snowflake.ID, side Role, rating float64, count int64) error
}

type Service interface {
	GetByID(ctx context.Context, id string) (*User, error)
}
