package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taskora/internal/assignment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.TaskAssignment, error) {
	var item domain.TaskAssignment
	err := db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindQualifying(ctx context.Context, db *gorm.DB, taskID, clientID, contractorID snowflake.ID) (*domain.TaskAssignment, error) {
	var item domain.TaskAssignment
	err := db.WithContext(ctx).
		Where("task_id = ? AND client_id = ? AND contractor_id = ?", taskID, clientID, contractorID).
		Order("created_at DESC").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.TaskAssignment, error) {
	var items []domain.TaskAssignment
	err := db.WithContext(ctx).
		Where("client_id = ? OR contractor_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, assignment *domain.TaskAssignment) error {
	return db.WithContext(ctx).Create(assignment).Error
}

func (r *repo) UpdateStatusOwned(ctx context.Context, db *gorm.DB, id, contractorID snowflake.ID, columns map[string]any) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.TaskAssignment{}).
		Where("id = ? AND contractor_id = ?", id, contractorID).
		Updates(columns)
	return res.RowsAffected, res.Error
}

func (r *repo) UpdateStatusClientOwned(ctx context.Context, db *gorm.DB, id, clientID snowflake.ID, columns map[string]any) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.TaskAssignment{}).
		Where("id = ? AND client_id = ?", id, clientID).
		Updates(columns)
	return res.RowsAffected, res.Error
}
