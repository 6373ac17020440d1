package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	assignmentdomain "github.com/smallbiznis/taskora/internal/assignment/domain"
	assignmentrepo "github.com/smallbiznis/taskora/internal/assignment/repository"
	assignmentservice "github.com/smallbiznis/taskora/internal/assignment/service"
	taskdomain "github.com/smallbiznis/taskora/internal/task/domain"
	taskrepo "github.com/smallbiznis/taskora/internal/task/repository"
	userdomain "github.com/smallbiznis/taskora/internal/user/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type dispatcherStub struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (d *dispatcherStub) SystemMessage(ctx context.Context, assignmentID snowflake.ID, text string, metadata map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return d.err
}

func (d *dispatcherStub) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func setupService(t *testing.T, dispatcher *dispatcherStub) (assignmentdomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&taskdomain.Category{},
		&taskdomain.Task{},
		&assignmentdomain.TaskAssignment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := assignmentservice.NewService(assignmentservice.Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Repo:       assignmentrepo.Provide(),
		TaskRepo:   taskrepo.Provide(),
		Dispatcher: dispatcher,
	})
	return svc, db, node
}

func seedTask(t *testing.T, db *gorm.DB, node *snowflake.Node, ownerID snowflake.ID) *taskdomain.Task {
	t.Helper()

	task := &taskdomain.Task{
		ID:          node.Generate(),
		Name:        "Garden cleanup",
		Slug:        fmt.Sprintf("garden-cleanup-%d", node.Generate()),
		Price:       decimal.NewFromInt(80),
		CategoryID:  node.Generate(),
		Status:      taskdomain.TaskStatusOpen,
		CreatedByID: ownerID,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func TestCreateAssignsTask(t *testing.T) {
	ctx := context.Background()
	svc, db, node := setupService(t, &dispatcherStub{})

	clientID := node.Generate()
	contractorID := node.Generate()
	task := seedTask(t, db, node, clientID)

	assignment, err := svc.Create(ctx, task.ID.String(), clientID, contractorID)
	require.NoError(t, err)
	require.Equal(t, assignmentdomain.StatusInProgress, assignment.Status)
	require.Equal(t, contractorID, assignment.ContractorID)

	var updated taskdomain.Task
	require.NoError(t, db.First(&updated, "id = ?", task.ID).Error)
	require.Equal(t, taskdomain.TaskStatusAssigned, updated.Status)

	// The task left the OPEN pool, so a second engagement is refused.
	_, err = svc.Create(ctx, task.ID.String(), clientID, node.Generate())
	require.ErrorIs(t, err, assignmentdomain.ErrTaskUnavailable)
}

func TestCreateRequiresTaskOwner(t *testing.T) {
	ctx := context.Background()
	svc, db, node := setupService(t, &dispatcherStub{})

	ownerID := node.Generate()
	task := seedTask(t, db, node, ownerID)

	_, err := svc.Create(ctx, task.ID.String(), node.Generate(), node.Generate())
	require.ErrorIs(t, err, taskdomain.ErrNotOwner)
}

func TestUpdateStatusContractorOnly(t *testing.T) {
	ctx := context.Background()
	svc, db, node := setupService(t, &dispatcherStub{})

	contractorID := node.Generate()
	assignment := &assignmentdomain.TaskAssignment{
		ID:           node.Generate(),
		TaskID:       node.Generate(),
		ClientID:     node.Generate(),
		ContractorID: contractorID,
		Status:       assignmentdomain.StatusInProgress,
	}
	require.NoError(t, db.Create(assignment).Error)

	_, err := svc.UpdateStatus(ctx, assignment.ID.String(), node.Generate(), assignmentdomain.StatusCompleted)
	require.ErrorIs(t, err, assignmentdomain.ErrNotContractor)

	updated, err := svc.UpdateStatus(ctx, assignment.ID.String(), contractorID, assignmentdomain.StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, assignmentdomain.StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	ctx := context.Background()
	svc, db, node := setupService(t, &dispatcherStub{})

	contractorID := node.Generate()
	assignment := &assignmentdomain.TaskAssignment{
		ID:           node.Generate(),
		TaskID:       node.Generate(),
		ClientID:     node.Generate(),
		ContractorID: contractorID,
		Status:       assignmentdomain.StatusCompleted,
	}
	require.NoError(t, db.Create(assignment).Error)

	_, err := svc.UpdateStatus(ctx, assignment.ID.String(), contractorID, assignmentdomain.StatusInProgress)
	require.ErrorIs(t, err, assignmentdomain.ErrBackwardTransition)

	// Acceptance is the client's move even when it is the next step.
	_, err = svc.UpdateStatus(ctx, assignment.ID.String(), contractorID, assignmentdomain.StatusAccepted)
	require.ErrorIs(t, err, assignmentdomain.ErrNotClient)

	_, err = svc.UpdateStatus(ctx, assignment.ID.String(), contractorID, "CANCELLED")
	require.ErrorIs(t, err, assignmentdomain.ErrInvalidStatus)
}

func TestAcceptRequiresCompletedWork(t *testing.T) {
	ctx := context.Background()
	svc, db, node := setupService(t, &dispatcherStub{})

	clientID := node.Generate()
	assignment := &assignmentdomain.TaskAssignment{
		ID:           node.Generate(),
		TaskID:       node.Generate(),
		ClientID:     clientID,
		ContractorID: node.Generate(),
		Status:       assignmentdomain.StatusInProgress,
	}
	require.NoError(t, db.Create(assignment).Error)

	_, err := svc.Accept(ctx, assignment.ID.String(), clientID)
	require.ErrorIs(t, err, assignmentdomain.ErrNotCompleted)

	require.NoError(t, db.Model(assignment).Update("status", assignmentdomain.StatusCompleted).Error)

	_, err = svc.Accept(ctx, assignment.ID.String(), node.Generate())
	require.ErrorIs(t, err, assignmentdomain.ErrNotClient)

	accepted, err := svc.Accept(ctx, assignment.ID.String(), clientID)
	require.NoError(t, err)
	require.Equal(t, assignmentdomain.StatusAccepted, accepted.Status)
}

func TestNotificationFailureDoesNotBlockStateChange(t *testing.T) {
	ctx := context.Background()
	dispatcher := &dispatcherStub{err: fmt.Errorf("broker down")}
	svc, db, node := setupService(t, dispatcher)

	clientID := node.Generate()
	task := seedTask(t, db, node, clientID)

	assignment, err := svc.Create(ctx, task.ID.String(), clientID, node.Generate())
	require.NoError(t, err)
	require.NotNil(t, assignment)
	require.Equal(t, 1, dispatcher.Calls())
}
