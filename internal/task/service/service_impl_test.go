package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	taskdomain "github.com/smallbiznis/taskora/internal/task/domain"
	taskrepo "github.com/smallbiznis/taskora/internal/task/repository"
	taskservice "github.com/smallbiznis/taskora/internal/task/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (taskdomain.Service, *gorm.DB, *snowflake.Node, *taskdomain.Category) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&taskdomain.Category{},
		&taskdomain.Task{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := taskservice.NewService(taskservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  taskrepo.Provide(),
	})

	category := &taskdomain.Category{ID: node.Generate(), Name: "Cleaning", Slug: "cleaning"}
	require.NoError(t, db.Create(category).Error)

	return svc, db, node, category
}

func TestCreateSlugsFromName(t *testing.T) {
	ctx := context.Background()
	svc, _, node, category := setup(t)

	task, err := svc.Create(ctx, node.Generate(), taskdomain.CreateTaskRequest{
		Name:       "  Deep Clean My Flat  ",
		Price:      decimal.NewFromInt(75),
		CategoryID: category.ID.String(),
	})
	require.NoError(t, err)
	require.Equal(t, "Deep Clean My Flat", task.Name)
	require.True(t, strings.HasPrefix(task.Slug, "deep-clean-my-flat-"))
	require.Equal(t, taskdomain.TaskStatusOpen, task.Status)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, node, category := setup(t)
	creatorID := node.Generate()

	_, err := svc.Create(ctx, creatorID, taskdomain.CreateTaskRequest{
		Name:       "   ",
		Price:      decimal.NewFromInt(10),
		CategoryID: category.ID.String(),
	})
	require.ErrorIs(t, err, taskdomain.ErrInvalidName)

	_, err = svc.Create(ctx, creatorID, taskdomain.CreateTaskRequest{
		Name:       "Free work",
		Price:      decimal.Zero,
		CategoryID: category.ID.String(),
	})
	require.ErrorIs(t, err, taskdomain.ErrInvalidPrice)

	_, err = svc.Create(ctx, creatorID, taskdomain.CreateTaskRequest{
		Name:       "Orphan",
		Price:      decimal.NewFromInt(10),
		CategoryID: node.Generate().String(),
	})
	require.ErrorIs(t, err, taskdomain.ErrInvalidCategory)
}

func TestUpdateOwnerOnly(t *testing.T) {
	ctx := context.Background()
	svc, _, node, category := setup(t)
	ownerID := node.Generate()

	task, err := svc.Create(ctx, ownerID, taskdomain.CreateTaskRequest{
		Name:       "Paint the hallway",
		Price:      decimal.NewFromInt(120),
		CategoryID: category.ID.String(),
	})
	require.NoError(t, err)

	newName := "Paint hallway and stairs"
	_, err = svc.Update(ctx, node.Generate(), taskdomain.UpdateTaskRequest{
		ID:   task.ID.String(),
		Name: &newName,
	})
	require.ErrorIs(t, err, taskdomain.ErrNotOwner)

	updated, err := svc.Update(ctx, ownerID, taskdomain.UpdateTaskRequest{
		ID:   task.ID.String(),
		Name: &newName,
	})
	require.NoError(t, err)
	require.Equal(t, newName, updated.Name)
	// Slug stays stable across renames so shared links keep working.
	require.Equal(t, task.Slug, updated.Slug)
}

func TestArchiveHidesFromListings(t *testing.T) {
	ctx := context.Background()
	svc, _, node, category := setup(t)
	ownerID := node.Generate()

	task, err := svc.Create(ctx, ownerID, taskdomain.CreateTaskRequest{
		Name:       "Walk the dog",
		Price:      decimal.NewFromInt(15),
		CategoryID: category.ID.String(),
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Archive(ctx, node.Generate(), task.ID.String()), taskdomain.ErrNotOwner)
	require.NoError(t, svc.Archive(ctx, ownerID, task.ID.String()))
	// Archiving twice is a no-op.
	require.NoError(t, svc.Archive(ctx, ownerID, task.ID.String()))

	resp, err := svc.List(ctx, taskdomain.ListTaskRequest{})
	require.NoError(t, err)
	require.Empty(t, resp.Tasks)

	// Archived tasks refuse edits.
	name := "Walk two dogs"
	_, err = svc.Update(ctx, ownerID, taskdomain.UpdateTaskRequest{ID: task.ID.String(), Name: &name})
	require.ErrorIs(t, err, taskdomain.ErrArchived)
}

func TestListFiltersByCategoryAndQuery(t *testing.T) {
	ctx := context.Background()
	svc, db, node, category := setup(t)
	ownerID := node.Generate()

	other := &taskdomain.Category{ID: node.Generate(), Name: "Gardening", Slug: "gardening"}
	require.NoError(t, db.Create(other).Error)

	for i, tc := range []struct {
		name     string
		category *taskdomain.Category
	}{
		{"Deep clean kitchen", category},
		{"Clean the windows", category},
		{"Mow the lawn", other},
	} {
		_, err := svc.Create(ctx, ownerID, taskdomain.CreateTaskRequest{
			Name:       fmt.Sprintf("%s %d", tc.name, i),
			Price:      decimal.NewFromInt(40),
			CategoryID: tc.category.ID.String(),
		})
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, taskdomain.ListTaskRequest{CategorySlug: "cleaning"})
	require.NoError(t, err)
	require.Len(t, resp.Tasks, 2)

	resp, err = svc.List(ctx, taskdomain.ListTaskRequest{Query: "lawn"})
	require.NoError(t, err)
	require.Len(t, resp.Tasks, 1)
	require.Contains(t, resp.Tasks[0].Name, "Mow the lawn")
}

func TestListPaginates(t *testing.T) {
	ctx := context.Background()
	svc, _, node, category := setup(t)
	ownerID := node.Generate()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, ownerID, taskdomain.CreateTaskRequest{
			Name:       fmt.Sprintf("Task %d", i),
			Price:      decimal.NewFromInt(10),
			CategoryID: category.ID.String(),
		})
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, taskdomain.ListTaskRequest{})
	require.NoError(t, err)
	require.Len(t, first.Tasks, 5)

	paged, err := svc.List(ctx, func() taskdomain.ListTaskRequest {
		req := taskdomain.ListTaskRequest{}
		req.PageSize = 2
		return req
	}())
	require.NoError(t, err)
	require.Len(t, paged.Tasks, 2)
	require.True(t, paged.HasMore)
	require.NotEmpty(t, paged.NextPageToken)

	rest, err := svc.List(ctx, func() taskdomain.ListTaskRequest {
		req := taskdomain.ListTaskRequest{}
		req.PageSize = 4
		req.PageToken = paged.NextPageToken
		return req
	}())
	require.NoError(t, err)
	require.Len(t, rest.Tasks, 3)
	require.False(t, rest.HasMore)
}

func TestGetBySlugMissing(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := setup(t)

	_, err := svc.GetBySlug(ctx, "never-posted")
	require.ErrorIs(t, err, taskdomain.ErrNotFound)
}
