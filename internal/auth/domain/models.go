// Package domain contains authentication models and contracts.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/smallbiznis/taskora/internal/user/domain"
)

// Session is a server-side login session resolved from a cookie.
type Session struct {
	ID        string       `json:"id" gorm:"type:text;primaryKey"`
	UserID    snowflake.ID `json:"user_id" gorm:"not null;index"`
	ExpiresAt time.Time    `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// Principal is the authenticated caller attached to request context.
type Principal struct {
	UserID snowflake.ID
	Role   userdomain.Role
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrSessionExpired     = errors.New("session_expired")
	ErrUserExists         = errors.New("email already exists")
	ErrInvalidRequest     = errors.New("invalid_request")
)

type RegisterRequest struct {
	Email       string          `json:"email" binding:"required,email"`
	Password    string          `json:"password" binding:"required,min=8"`
	DisplayName string          `json:"display_name" binding:"required"`
	Role        userdomain.Role `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	SessionID string
	ExpiresAt time.Time
	User      *userdomain.User
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*userdomain.User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	// Logout deletes the session and the caller's session cart.
	Logout(ctx context.Context, sessionID string, sessionCartID string) error
	Resolve(ctx context.Context, sessionID string) (*Principal, error)
}
