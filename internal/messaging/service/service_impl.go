package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	assignmentdomain "github.com/smallbiznis/taskora/internal/assignment/domain"
	"github.com/smallbiznis/taskora/internal/messaging/domain"
	taskdomain "github.com/smallbiznis/taskora/internal/task/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Repo           domain.Repository
	TaskRepo       taskdomain.Repository
	AssignmentRepo assignmentdomain.Repository
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	repo           domain.Repository
	taskRepo       taskdomain.Repository
	assignmentRepo assignmentdomain.Repository
}

func NewService(p Params) *Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("messaging.service"),
		genID:          p.GenID,
		repo:           p.Repo,
		taskRepo:       p.TaskRepo,
		assignmentRepo: p.AssignmentRepo,
	}
}

func (s *Service) Contact(ctx context.Context, taskID string, callerID snowflake.ID) (*domain.Conversation, error) {
	parsed, err := snowflake.ParseString(taskID)
	if err != nil {
		return nil, taskdomain.ErrNotFound
	}
	task, err := s.taskRepo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, taskdomain.ErrNotFound
	}
	if task.CreatedByID == callerID {
		return nil, domain.ErrNotParticipant
	}

	existing, err := s.repo.FindForTaskParticipants(ctx, s.db, parsed, callerID, task.CreatedByID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	conversation := &domain.Conversation{
		ID:     s.genID.Generate(),
		TaskID: &parsed,
		Participants: []domain.ConversationParticipant{
			{UserID: callerID},
			{UserID: task.CreatedByID},
		},
	}
	for i := range conversation.Participants {
		conversation.Participants[i].ConversationID = conversation.ID
	}
	if err := s.repo.Create(ctx, s.db, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *Service) Send(ctx context.Context, conversationID string, senderID snowflake.ID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyBody
	}

	parsed, err := snowflake.ParseString(conversationID)
	if err != nil {
		return nil, domain.ErrConversationNotFound
	}
	ok, err := s.repo.IsParticipant(ctx, s.db, parsed, senderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotParticipant
	}

	message := &domain.Message{
		ID:             s.genID.Generate(),
		ConversationID: parsed,
		SenderID:       &senderID,
		Body:           body,
		Metadata:       datatypes.JSONMap{},
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.AppendMessage(ctx, s.db, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *Service) ListMine(ctx context.Context, userID snowflake.ID) ([]domain.Conversation, error) {
	return s.repo.ListForUser(ctx, s.db, userID)
}

func (s *Service) Messages(ctx context.Context, conversationID string, callerID snowflake.ID) ([]domain.Message, error) {
	parsed, err := snowflake.ParseString(conversationID)
	if err != nil {
		return nil, domain.ErrConversationNotFound
	}
	ok, err := s.repo.IsParticipant(ctx, s.db, parsed, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotParticipant
	}
	return s.repo.ListMessages(ctx, s.db, parsed)
}

// SystemMessage posts an automated notice into the conversation between the
// assignment's parties. When the parties never opened a conversation there is
// nowhere to deliver, so the notice is dropped without error.
func (s *Service) SystemMessage(ctx context.Context, assignmentID snowflake.ID, text string, metadata map[string]any) error {
	assignment, err := s.assignmentRepo.FindByID(ctx, s.db, assignmentID)
	if err != nil {
		return err
	}
	if assignment == nil {
		return nil
	}

	conversation, err := s.repo.FindForTaskParticipants(ctx, s.db,
		assignment.TaskID, assignment.ClientID, assignment.ContractorID)
	if err != nil {
		return err
	}
	if conversation == nil {
		return nil
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	return s.repo.AppendMessage(ctx, s.db, &domain.Message{
		ID:              s.genID.Generate(),
		ConversationID:  conversation.ID,
		Body:            text,
		IsSystemMessage: true,
		Metadata:        datatypes.JSONMap(metadata),
		CreatedAt:       time.Now().UTC(),
	})
}
