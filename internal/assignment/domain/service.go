package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("assignment_not_found")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrNotContractor      = errors.New("only the assigned contractor may update this assignment")
	ErrNotClient          = errors.New("only the client may accept this assignment")
	ErrNotCompleted       = errors.New("only completed assignments can be accepted")
	ErrBackwardTransition = errors.New("status may only move forward")
	ErrTaskUnavailable    = errors.New("task is not open for assignment")
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*TaskAssignment, error)
	// FindQualifying locates an assignment between the given parties for a
	// task, used by invoicing to trace the billed engagement.
	FindQualifying(ctx context.Context, db *gorm.DB, taskID, clientID, contractorID snowflake.ID) (*TaskAssignment, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]TaskAssignment, error)
	Create(ctx context.Context, db *gorm.DB, assignment *TaskAssignment) error
	// UpdateStatusOwned updates the row only when it belongs to contractorID;
	// authorization rides in the where-clause so a non-owner update matches
	// zero rows.
	UpdateStatusOwned(ctx context.Context, db *gorm.DB, id, contractorID snowflake.ID, columns map[string]any) (int64, error)
	// UpdateStatusClientOwned is the client-side counterpart used by Accept.
	UpdateStatusClientOwned(ctx context.Context, db *gorm.DB, id, clientID snowflake.ID, columns map[string]any) (int64, error)
}

type Service interface {
	Create(ctx context.Context, taskID string, clientID, contractorID snowflake.ID) (*TaskAssignment, error)
	UpdateStatus(ctx context.Context, id string, contractorID snowflake.ID, status Status) (*TaskAssignment, error)
	Accept(ctx context.Context, id string, clientID snowflake.ID) (*TaskAssignment, error)
	GetByID(ctx context.Context, id string) (*TaskAssignment, error)
	ListMine(ctx context.Context, userID snowflake.ID) ([]TaskAssignment, error)
}
