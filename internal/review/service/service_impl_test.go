package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	assignmentdomain "github.com/smallbiznis/taskora/internal/assignment/domain"
	assignmentrepo "github.com/smallbiznis/taskora/internal/assignment/repository"
	reviewdomain "github.com/smallbiznis/taskora/internal/review/domain"
	reviewrepo "github.com/smallbiznis/taskora/internal/review/repository"
	reviewservice "github.com/smallbiznis/taskora/internal/review/service"
	userdomain "github.com/smallbiznis/taskora/internal/user/domain"
	userrepo "github.com/smallbiznis/taskora/internal/user/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type dispatcherStub struct {
	mu    sync.Mutex
	calls int
}

func (d *dispatcherStub) SystemMessage(ctx context.Context, assignmentID snowflake.ID, text string, metadata map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return nil
}

type fixture struct {
	svc          reviewdomain.Service
	db           *gorm.DB
	node         *snowflake.Node
	clientID     snowflake.ID
	contractorID snowflake.ID
}

func setup(t *testing.T) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&assignmentdomain.TaskAssignment{},
		&reviewdomain.Review{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := reviewservice.NewService(reviewservice.Params{
		DB:             db,
		Log:            zap.NewNop(),
		GenID:          node,
		Repo:           reviewrepo.Provide(),
		AssignmentRepo: assignmentrepo.Provide(),
		UserRepo:       userrepo.Provide(),
		Dispatcher:     &dispatcherStub{},
	})

	clientID := node.Generate()
	contractorID := node.Generate()
	require.NoError(t, db.Create(&userdomain.User{
		ID: clientID, Email: "client@example.com", PasswordHash: "x",
		DisplayName: "Client", Role: userdomain.RoleClient,
	}).Error)
	require.NoError(t, db.Create(&userdomain.User{
		ID: contractorID, Email: "contractor@example.com", PasswordHash: "x",
		DisplayName: "Contractor", Role: userdomain.RoleContractor,
	}).Error)

	return fixture{svc: svc, db: db, node: node, clientID: clientID, contractorID: contractorID}
}

func (f fixture) seedAssignment(t *testing.T) *assignmentdomain.TaskAssignment {
	t.Helper()

	assignment := &assignmentdomain.TaskAssignment{
		ID:           f.node.Generate(),
		TaskID:       f.node.Generate(),
		ClientID:     f.clientID,
		ContractorID: f.contractorID,
		Status:       assignmentdomain.StatusAccepted,
	}
	require.NoError(t, f.db.Create(assignment).Error)
	return assignment
}

func TestSubmitContractorReviewUpdatesAggregate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	first := f.seedAssignment(t)
	review, err := f.svc.SubmitContractorReview(ctx, f.clientID, reviewdomain.SubmitReviewRequest{
		AssignmentID: first.ID.String(),
		Rating:       4,
		Description:  "Solid work",
	})
	require.NoError(t, err)
	require.Equal(t, f.contractorID, review.RevieweeID)
	require.Equal(t, reviewdomain.TypeContractorReview, review.Type)

	var contractor userdomain.User
	require.NoError(t, f.db.First(&contractor, "id = ?", f.contractorID).Error)
	require.Equal(t, 4.0, contractor.ContractorRating)
	require.Equal(t, int64(1), contractor.ContractorReviewCount)

	second := f.seedAssignment(t)
	_, err = f.svc.SubmitContractorReview(ctx, f.clientID, reviewdomain.SubmitReviewRequest{
		AssignmentID: second.ID.String(),
		Rating:       5,
	})
	require.NoError(t, err)

	require.NoError(t, f.db.First(&contractor, "id = ?", f.contractorID).Error)
	require.Equal(t, 4.5, contractor.ContractorRating)
	require.Equal(t, int64(2), contractor.ContractorReviewCount)
}

func TestResubmitReplacesReview(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	assignment := f.seedAssignment(t)

	_, err := f.svc.SubmitContractorReview(ctx, f.clientID, reviewdomain.SubmitReviewRequest{
		AssignmentID: assignment.ID.String(),
		Rating:       5,
		Description:  "Great",
	})
	require.NoError(t, err)

	review, err := f.svc.SubmitContractorReview(ctx, f.clientID, reviewdomain.SubmitReviewRequest{
		AssignmentID: assignment.ID.String(),
		Rating:       3,
		Description:  "On second thought",
	})
	require.NoError(t, err)
	require.Equal(t, 3, review.Rating)

	var count int64
	require.NoError(t, f.db.Model(&reviewdomain.Review{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var contractor userdomain.User
	require.NoError(t, f.db.First(&contractor, "id = ?", f.contractorID).Error)
	require.Equal(t, 3.0, contractor.ContractorRating)
	require.Equal(t, int64(1), contractor.ContractorReviewCount)
}

func TestSubmitClientReviewUpdatesClientAggregate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	assignment := f.seedAssignment(t)

	review, err := f.svc.SubmitClientReview(ctx, f.contractorID, reviewdomain.SubmitReviewRequest{
		AssignmentID: assignment.ID.String(),
		Rating:       5,
	})
	require.NoError(t, err)
	require.Equal(t, f.clientID, review.RevieweeID)

	var client userdomain.User
	require.NoError(t, f.db.First(&client, "id = ?", f.clientID).Error)
	require.Equal(t, 5.0, client.ClientRating)
	require.Equal(t, int64(1), client.ClientReviewCount)
	require.Equal(t, float64(0), client.ContractorRating)
}

func TestSubmitRejectsOutOfRangeRating(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	assignment := f.seedAssignment(t)

	for _, rating := range []int{0, 6, -1} {
		_, err := f.svc.SubmitContractorReview(ctx, f.clientID, reviewdomain.SubmitReviewRequest{
			AssignmentID: assignment.ID.String(),
			Rating:       rating,
		})
		require.ErrorIs(t, err, reviewdomain.ErrInvalidRating)
	}
}

func TestSubmitRequiresParticipant(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	assignment := f.seedAssignment(t)

	_, err := f.svc.SubmitContractorReview(ctx, f.node.Generate(), reviewdomain.SubmitReviewRequest{
		AssignmentID: assignment.ID.String(),
		Rating:       4,
	})
	require.ErrorIs(t, err, reviewdomain.ErrNotParticipant)

	// The contractor cannot file the client-side review of themselves.
	_, err = f.svc.SubmitContractorReview(ctx, f.contractorID, reviewdomain.SubmitReviewRequest{
		AssignmentID: assignment.ID.String(),
		Rating:       5,
	})
	require.ErrorIs(t, err, reviewdomain.ErrNotParticipant)
}

func TestSubmitUnknownAssignment(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.SubmitContractorReview(ctx, f.clientID, reviewdomain.SubmitReviewRequest{
		AssignmentID: f.node.Generate().String(),
		Rating:       4,
	})
	require.ErrorIs(t, err, reviewdomain.ErrAssignmentMissing)
}
