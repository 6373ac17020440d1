package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taskora/internal/user/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var item domain.User
	err := db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var item domain.User
	err := db.WithContext(ctx).First(&item, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) UpdateRating(ctx context.Context, db *gorm.DB, userID snowflake.ID, side domain.Role, rating float64, count int64) error {
	columns := map[string]any{}
	switch side {
	case domain.RoleContractor:
		columns["contractor_rating"] = rating
		columns["contractor_review_count"] = count
	case domain.RoleClient:
		columns["client_rating"] = rating
		columns["client_review_count"] = count
	default:
		return domain.ErrNotFound
	}
	return db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Updates(columns).Error
}
