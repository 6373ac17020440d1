package domain

import (
	"context"
	"errors"
	"math"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("review_not_found")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrNotParticipant    = errors.New("only assignment participants may leave a review")
	ErrAssignmentMissing = errors.New("assignment_not_found")
)

// AverageRating recomputes a reviewee's aggregate over the full review set.
// Pure and idempotent; callers persist the returned scalar denormalized.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))
	return math.Round(mean*100) / 100
}

type SubmitReviewRequest struct {
	AssignmentID string `json:"assignment_id" binding:"required"`
	Rating       int    `json:"rating" binding:"required"`
	Description  string `json:"description"`
}

type Repository interface {
	FindExisting(ctx context.Context, db *gorm.DB, assignmentID, reviewerID snowflake.ID, reviewType ReviewType) (*Review, error)
	ListRatingsForReviewee(ctx context.Context, db *gorm.DB, revieweeID snowflake.ID, reviewType ReviewType) ([]int, error)
	ListByAssignment(ctx context.Context, db *gorm.DB, assignmentID snowflake.ID) ([]Review, error)
	Create(ctx context.Context, db *gorm.DB, review *Review) error
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, columns map[string]any) error
}

type Service interface {
	// SubmitContractorReview records the client's rating of the contractor.
	SubmitContractorReview(ctx context.Context, reviewerID snowflake.ID, req SubmitReviewRequest) (*Review, error)
	// SubmitClientReview records the contractor's rating of the client.
	SubmitClientReview(ctx context.Context, reviewerID snowflake.ID, req SubmitReviewRequest) (*Review, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]Review, error)
}
