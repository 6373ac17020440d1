// Package domain contains conversation and message models.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Conversation is a message thread, optionally scoped to a task.
type Conversation struct {
	ID        snowflake.ID  `json:"id" gorm:"primaryKey"`
	TaskID    *snowflake.ID `json:"task_id,omitempty" gorm:"index"`
	CreatedAt time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Participants []ConversationParticipant `json:"participants,omitempty" gorm:"foreignKey:ConversationID"`
	Messages     []Message                 `json:"messages,omitempty" gorm:"foreignKey:ConversationID"`
}

// TableName sets the database table name.
func (Conversation) TableName() string { return "conversations" }

// ConversationParticipant links a user into a conversation.
type ConversationParticipant struct {
	ConversationID snowflake.ID `json:"conversation_id" gorm:"primaryKey"`
	UserID         snowflake.ID `json:"user_id" gorm:"primaryKey;index"`
}

// TableName sets the database table name.
func (ConversationParticipant) TableName() string { return "conversation_participants" }

// Message is one entry in a conversation. System messages carry no sender
// and describe the triggering event in Metadata.
type Message struct {
	ID              snowflake.ID      `json:"id" gorm:"primaryKey"`
	ConversationID  snowflake.ID      `json:"conversation_id" gorm:"not null;index"`
	SenderID        *snowflake.ID     `json:"sender_id,omitempty" gorm:"index"`
	Body            string            `json:"body" gorm:"type:text;not null"`
	IsSystemMessage bool              `json:"is_system_message" gorm:"not null;default:false"`
	Metadata        datatypes.JSONMap `json:"metadata" gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt       time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Message) TableName() string { return "messages" }

var (
	ErrConversationNotFound = errors.New("conversation_not_found")
	ErrNotParticipant       = errors.New("only participants may post to this conversation")
	ErrEmptyBody            = errors.New("message body is required")
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Conversation, error)
	// FindForTaskParticipants locates the conversation scoped to the task
	// that includes both users.
	FindForTaskParticipants(ctx context.Context, db *gorm.DB, taskID, userA, userB snowflake.ID) (*Conversation, error)
	ListForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Conversation, error)
	Create(ctx context.Context, db *gorm.DB, conversation *Conversation) error
	AppendMessage(ctx context.Context, db *gorm.DB, message *Message) error
	ListMessages(ctx context.Context, db *gorm.DB, conversationID snowflake.ID) ([]Message, error)
	IsParticipant(ctx context.Context, db *gorm.DB, conversationID, userID snowflake.ID) (bool, error)
}

type Service interface {
	// Contact opens (or returns) the conversation between the caller and the
	// task owner. This is the only path that creates conversations.
	Contact(ctx context.Context, taskID string, callerID snowflake.ID) (*Conversation, error)
	Send(ctx context.Context, conversationID string, senderID snowflake.ID, body string) (*Message, error)
	ListMine(ctx context.Context, userID snowflake.ID) ([]Conversation, error)
	Messages(ctx context.Context, conversationID string, callerID snowflake.ID) ([]Message, error)
}
