package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindSession(ctx context.Context, db *gorm.DB, id string) (*Session, error)
	CreateSession(ctx context.Context, db *gorm.DB, session *Session) error
	DeleteSession(ctx context.Context, db *gorm.DB, id string) error
	// DeleteExpired prunes sessions past their expiry.
	DeleteExpired(ctx context.Context, db *gorm.DB) (int64, error)
}
