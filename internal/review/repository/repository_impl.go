package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taskora/internal/review/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindExisting(ctx context.Context, db *gorm.DB, assignmentID, reviewerID snowflake.ID, reviewType domain.ReviewType) (*domain.Review, error) {
	var item domain.Review
	err := db.WithContext(ctx).
		Where("assignment_id = ? AND reviewer_id = ? AND type = ?", assignmentID, reviewerID, reviewType).
		Order("created_at ASC").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListRatingsForReviewee(ctx context.Context, db *gorm.DB, revieweeID snowflake.ID, reviewType domain.ReviewType) ([]int, error) {
	var ratings []int
	err := db.WithContext(ctx).
		Model(&domain.Review{}).
		Where("reviewee_id = ? AND type = ?", revieweeID, reviewType).
		Pluck("rating", &ratings).Error
	return ratings, err
}

func (r *repo) ListByAssignment(ctx context.Context, db *gorm.DB, assignmentID snowflake.ID) ([]domain.Review, error) {
	var items []domain.Review
	err := db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, review *domain.Review) error {
	return db.WithContext(ctx).Create(review).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, columns map[string]any) error {
	return db.WithContext(ctx).Model(&domain.Review{}).Where("id = ?", id).Updates(columns).Error
}
