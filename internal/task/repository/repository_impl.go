package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taskora/internal/task/domain"
	"github.com/smallbiznis/taskora/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Task, error) {
	var item domain.Task
	err := db.WithContext(ctx).Preload("Category").First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Task, error) {
	var item domain.Task
	err := db.WithContext(ctx).Preload("Category").First(&item, "slug = ?", strings.TrimSpace(slug)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListTaskRequest) ([]*domain.Task, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Task{}).
		Preload("Category").
		Where("is_archived = ?", false)

	if req.Status != "" {
		stmt = stmt.Where("status = ?", req.Status)
	}
	if q := strings.TrimSpace(req.Query); q != "" {
		stmt = stmt.Where("name LIKE ?", "%"+q+"%")
	}
	if slugValue := strings.TrimSpace(req.CategorySlug); slugValue != "" {
		stmt = stmt.Joins("JOIN categories ON categories.id = tasks.category_id").
			Where("categories.slug = ?", slugValue)
	}

	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return nil, err
		}
		if cursor.ID != "" {
			stmt = stmt.Where("tasks.id < ?", cursor.ID)
		}
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 10
	}

	var items []*domain.Task
	// Fetch one extra row to detect whether more pages exist.
	err := stmt.Order("tasks.id DESC").Limit(limit + 1).Find(&items).Error
	return items, err
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return db.WithContext(ctx).Create(task).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, columns map[string]any) error {
	return db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", id).Updates(columns).Error
}

func (r *repo) FindCategoryByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Category, error) {
	var item domain.Category
	err := db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindCategoryBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Category, error) {
	var item domain.Category
	err := db.WithContext(ctx).First(&item, "slug = ?", strings.TrimSpace(slug)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	var items []domain.Category
	err := db.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, err
}
