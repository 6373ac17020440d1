package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	assignmentdomain "github.com/smallbiznis/taskora/internal/assignment/domain"
	assignmentrepo "github.com/smallbiznis/taskora/internal/assignment/repository"
	messagingdomain "github.com/smallbiznis/taskora/internal/messaging/domain"
	messagingrepo "github.com/smallbiznis/taskora/internal/messaging/repository"
	messagingservice "github.com/smallbiznis/taskora/internal/messaging/service"
	"github.com/smallbiznis/taskora/internal/notify"
	taskdomain "github.com/smallbiznis/taskora/internal/task/domain"
	taskrepo "github.com/smallbiznis/taskora/internal/task/repository"
	userdomain "github.com/smallbiznis/taskora/internal/user/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*messagingservice.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&taskdomain.Task{},
		&assignmentdomain.TaskAssignment{},
		&messagingdomain.Conversation{},
		&messagingdomain.ConversationParticipant{},
		&messagingdomain.Message{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := messagingservice.NewService(messagingservice.Params{
		DB:             db,
		Log:            zap.NewNop(),
		GenID:          node,
		Repo:           messagingrepo.Provide(),
		TaskRepo:       taskrepo.Provide(),
		AssignmentRepo: assignmentrepo.Provide(),
	})
	return svc, db, node
}

func seedTask(t *testing.T, db *gorm.DB, node *snowflake.Node, ownerID snowflake.ID) *taskdomain.Task {
	t.Helper()

	task := &taskdomain.Task{
		ID:          node.Generate(),
		Name:        "Fix the fence",
		Slug:        fmt.Sprintf("fix-the-fence-%d", node.Generate()),
		Price:       decimal.NewFromInt(60),
		CategoryID:  node.Generate(),
		Status:      taskdomain.TaskStatusOpen,
		CreatedByID: ownerID,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func TestContactCreatesConversationOnce(t *testing.T) {
	ctx := context.Background()
	svc, db, node := setup(t)

	ownerID := node.Generate()
	callerID := node.Generate()
	task := seedTask(t, db, node, ownerID)

	first, err := svc.Contact(ctx, task.ID.String(), callerID)
	require.NoError(t, err)
	require.Len(t, first.Participants, 2)

	second, err := svc.Contact(ctx, task.ID.String(), callerID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&messagingdomain.Conversation{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestContactOwnTaskRejected(t *testing.T) {
	ctx := context.Background()
	svc, db, node := setup(t)

	ownerID := node.Generate()
	task := seedTask(t, db, node, ownerID)

	_, err := svc.Contact(ctx, task.ID.String(), ownerID)
	require.ErrorIs(t, err, messagingdomain.ErrNotParticipant)
}

func TestSendRequiresParticipantAndBody(t *testing.T) {
	ctx := context.Background()
	svc, db, node := setup(t)

	ownerID := node.Generate()
	callerID := node.Generate()
	task := seedTask(t, db, node, ownerID)

	conversation, err := svc.Contact(ctx, task.ID.String(), callerID)
	require.NoError(t, err)

	_, err = svc.Send(ctx, conversation.ID.String(), callerID, "   ")
	require.ErrorIs(t, err, messagingdomain.ErrEmptyBody)

	_, err = svc.Send(ctx, conversation.ID.String(), node.Generate(), "hello")
	require.ErrorIs(t, err, messagingdomain.ErrNotParticipant)

	message, err := svc.Send(ctx, conversation.ID.String(), callerID, "  hello  ")
	require.NoError(t, err)
	require.Equal(t, "hello", message.Body)
	require.False(t, message.IsSystemMessage)
	require.NotNil(t, message.SenderID)
}

func TestMessagesGatedToParticipants(t *testing.T) {
	ctx := context.Background()
	svc, db, node := setup(t)

	ownerID := node.Generate()
	callerID := node.Generate()
	task := seedTask(t, db, node, ownerID)

	conversation, err := svc.Contact(ctx, task.ID.String(), callerID)
	require.NoError(t, err)
	_, err = svc.Send(ctx, conversation.ID.String(), callerID, "hello")
	require.NoError(t, err)

	messages, err := svc.Messages(ctx, conversation.ID.String(), ownerID)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	_, err = svc.Messages(ctx, conversation.ID.String(), node.Generate())
	require.ErrorIs(t, err, messagingdomain.ErrNotParticipant)
}

func TestSystemMessageDropsWhenNoConversation(t *testing.T) {
	ctx := context.Background()
	svc, db, node := setup(t)

	assignment := &assignmentdomain.TaskAssignment{
		ID:           node.Generate(),
		TaskID:       node.Generate(),
		ClientID:     node.Generate(),
		ContractorID: node.Generate(),
		Status:       assignmentdomain.StatusInProgress,
	}
	require.NoError(t, db.Create(assignment).Error)

	// No conversation between the parties: nothing to deliver, no error.
	require.NoError(t, svc.SystemMessage(ctx, assignment.ID, "noted", nil))

	// Same for an assignment that does not exist at all.
	require.NoError(t, svc.SystemMessage(ctx, node.Generate(), "noted", nil))

	var count int64
	require.NoError(t, db.Model(&messagingdomain.Message{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestSystemMessageDeliversIntoTaskConversation(t *testing.T) {
	ctx := context.Background()
	svc, db, node := setup(t)

	ownerID := node.Generate()
	contractorID := node.Generate()
	task := seedTask(t, db, node, ownerID)

	conversation, err := svc.Contact(ctx, task.ID.String(), contractorID)
	require.NoError(t, err)

	assignment := &assignmentdomain.TaskAssignment{
		ID:           node.Generate(),
		TaskID:       task.ID,
		ClientID:     ownerID,
		ContractorID: contractorID,
		Status:       assignmentdomain.StatusInProgress,
	}
	require.NoError(t, db.Create(assignment).Error)

	require.NoError(t, svc.SystemMessage(ctx, assignment.ID, "Work has started.", map[string]any{
		"event": notify.EventAssignmentCreated,
	}))

	messages, err := svc.Messages(ctx, conversation.ID.String(), ownerID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.True(t, messages[0].IsSystemMessage)
	require.Nil(t, messages[0].SenderID)
	require.Equal(t, "Work has started.", messages[0].Body)
	require.Equal(t, notify.EventAssignmentCreated, messages[0].Metadata["event"])
}
