package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taskora/internal/assignment/domain"
	"github.com/smallbiznis/taskora/internal/notify"
	taskdomain "github.com/smallbiznis/taskora/internal/task/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	TaskRepo   taskdomain.Repository
	Dispatcher notify.Dispatcher
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	taskRepo   taskdomain.Repository
	dispatcher notify.Dispatcher
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("assignment.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		taskRepo:   p.TaskRepo,
		dispatcher: p.Dispatcher,
	}
}

func (s *Service) Create(ctx context.Context, taskID string, clientID, contractorID snowflake.ID) (*domain.TaskAssignment, error) {
	parsedTaskID, err := snowflake.ParseString(taskID)
	if err != nil {
		return nil, taskdomain.ErrNotFound
	}

	task, err := s.taskRepo.FindByID(ctx, s.db, parsedTaskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.IsArchived {
		return nil, taskdomain.ErrNotFound
	}
	if task.CreatedByID != clientID {
		return nil, taskdomain.ErrNotOwner
	}
	if task.Status != taskdomain.TaskStatusOpen {
		return nil, domain.ErrTaskUnavailable
	}

	assignment := &domain.TaskAssignment{
		ID:           s.genID.Generate(),
		TaskID:       parsedTaskID,
		ClientID:     clientID,
		ContractorID: contractorID,
		Status:       domain.StatusInProgress,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, assignment); err != nil {
			return err
		}
		return s.taskRepo.Update(ctx, tx, parsedTaskID, map[string]any{
			"status":     taskdomain.TaskStatusAssigned,
			"updated_at": time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, assignment.ID, "The task has been assigned and work is in progress.", map[string]any{
		"event":         notify.EventAssignmentCreated,
		"assignment_id": assignment.ID.String(),
		"status":        string(domain.StatusInProgress),
	})
	return assignment, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, contractorID snowflake.ID, status domain.Status) (*domain.TaskAssignment, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	// Acceptance belongs to the client; the contractor path stops at COMPLETED.
	if status == domain.StatusAccepted {
		return nil, domain.ErrNotClient
	}

	assignment, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, domain.ErrNotFound
	}
	if !assignment.Status.CanTransitionTo(status) {
		return nil, domain.ErrBackwardTransition
	}

	now := time.Now().UTC()
	columns := map[string]any{
		"status":     status,
		"updated_at": now,
	}
	if status == domain.StatusCompleted {
		columns["completed_at"] = now
	}

	rows, err := s.repo.UpdateStatusOwned(ctx, s.db, parsed, contractorID, columns)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrNotContractor
	}

	if status == domain.StatusCompleted {
		s.notify(ctx, parsed, "The contractor marked the task as completed.", map[string]any{
			"event":         notify.EventAssignmentCompleted,
			"assignment_id": parsed.String(),
			"status":        string(domain.StatusCompleted),
		})
	}
	return s.repo.FindByID(ctx, s.db, parsed)
}

func (s *Service) Accept(ctx context.Context, id string, clientID snowflake.ID) (*domain.TaskAssignment, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	assignment, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, domain.ErrNotFound
	}
	if assignment.ClientID != clientID {
		return nil, domain.ErrNotClient
	}
	if assignment.Status != domain.StatusCompleted {
		return nil, domain.ErrNotCompleted
	}

	rows, err := s.repo.UpdateStatusClientOwned(ctx, s.db, parsed, clientID, map[string]any{
		"status":     domain.StatusAccepted,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrNotClient
	}

	s.notify(ctx, parsed, "The client accepted the completed work.", map[string]any{
		"event":         notify.EventAssignmentAccepted,
		"assignment_id": parsed.String(),
		"status":        string(domain.StatusAccepted),
	})
	return s.repo.FindByID(ctx, s.db, parsed)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.TaskAssignment, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	assignment, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, domain.ErrNotFound
	}
	return assignment, nil
}

func (s *Service) ListMine(ctx context.Context, userID snowflake.ID) ([]domain.TaskAssignment, error) {
	return s.repo.ListByUser(ctx, s.db, userID)
}

// notify posts a system message for the assignment. Notification failures are
// logged and swallowed so the state change itself never rolls back.
func (s *Service) notify(ctx context.Context, assignmentID snowflake.ID, text string, metadata map[string]any) {
	if err := s.dispatcher.SystemMessage(ctx, assignmentID, text, metadata); err != nil {
		s.log.Warn("failed to dispatch system message",
			zap.String("assignment_id", assignmentID.String()),
			zap.Error(err),
		)
	}
}
