package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/taskora/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("task_not_found")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrNotOwner        = errors.New("only the task owner may modify it")
	ErrSlugExists      = errors.New("slug already exists")
	ErrArchived        = errors.New("task_archived")
)

type CreateTaskRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Images      []string        `json:"images"`
	CategoryID  string          `json:"category_id" binding:"required"`
}

type UpdateTaskRequest struct {
	ID          string           `json:"id"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Images      []string         `json:"images"`
	CategoryID  *string          `json:"category_id"`
}

type ListTaskRequest struct {
	pagination.Pagination
	CategorySlug string     `form:"category"`
	Status       TaskStatus `form:"status"`
	Query        string     `form:"q"`
}

type ListTaskResponse struct {
	pagination.PageInfo
	Tasks []Task `json:"tasks"`
}

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Task, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Task, error)
	List(ctx context.Context, db *gorm.DB, req ListTaskRequest) ([]*Task, error)
	Create(ctx context.Context, db *gorm.DB, task *Task) error
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, columns map[string]any) error
	FindCategoryByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Category, error)
	FindCategoryBySlug(ctx context.Context, db *gorm.DB, slug string) (*Category, error)
	ListCategories(ctx context.Context, db *gorm.DB) ([]Category, error)
}

type Service interface {
	Create(ctx context.Context, creatorID snowflake.ID, req CreateTaskRequest) (*Task, error)
	Update(ctx context.Context, callerID snowflake.ID, req UpdateTaskRequest) (*Task, error)
	GetBySlug(ctx context.Context, slug string) (*Task, error)
	List(ctx context.Context, req ListTaskRequest) (ListTaskResponse, error)
	Archive(ctx context.Context, callerID snowflake.ID, id string) error
	ListCategories(ctx context.Context) ([]Category, error)
}
