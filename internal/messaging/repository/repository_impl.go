package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taskora/internal/messaging/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Conversation, error) {
	var item domain.Conversation
	err := db.WithContext(ctx).
		Preload("Participants").
		First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindForTaskParticipants(ctx context.Context, db *gorm.DB, taskID, userA, userB snowflake.ID) (*domain.Conversation, error) {
	var item domain.Conversation
	err := db.WithContext(ctx).
		Preload("Participants").
		Where(`task_id = ?
			AND EXISTS (SELECT 1 FROM conversation_participants cp
				WHERE cp.conversation_id = conversations.id AND cp.user_id = ?)
			AND EXISTS (SELECT 1 FROM conversation_participants cp
				WHERE cp.conversation_id = conversations.id AND cp.user_id = ?)`,
			taskID, userA, userB).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.Conversation, error) {
	var items []domain.Conversation
	err := db.WithContext(ctx).
		Preload("Participants").
		Where(`EXISTS (SELECT 1 FROM conversation_participants cp
			WHERE cp.conversation_id = conversations.id AND cp.user_id = ?)`, userID).
		Order("updated_at DESC").
		Find(&items).Error
	return items, err
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, conversation *domain.Conversation) error {
	return db.WithContext(ctx).Create(conversation).Error
}

func (r *repo) AppendMessage(ctx context.Context, db *gorm.DB, message *domain.Message) error {
	if err := db.WithContext(ctx).Create(message).Error; err != nil {
		return err
	}
	// Touch the parent so conversation listings sort by activity.
	return db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", message.ConversationID).
		Update("updated_at", message.CreatedAt).Error
}

func (r *repo) ListMessages(ctx context.Context, db *gorm.DB, conversationID snowflake.ID) ([]domain.Message, error) {
	var items []domain.Message
	err := db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *repo) IsParticipant(ctx context.Context, db *gorm.DB, conversationID, userID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	return count > 0, err
}
