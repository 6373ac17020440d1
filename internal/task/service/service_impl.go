package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/taskora/internal/task/domain"
	"github.com/smallbiznis/taskora/pkg/db"
	"github.com/smallbiznis/taskora/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("task.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, creatorID snowflake.ID, req domain.CreateTaskRequest) (*domain.Task, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Price.IsNegative() || req.Price.IsZero() {
		return nil, domain.ErrInvalidPrice
	}

	categoryID, err := snowflake.ParseString(req.CategoryID)
	if err != nil {
		return nil, domain.ErrInvalidCategory
	}
	category, err := s.repo.FindCategoryByID(ctx, s.db, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrInvalidCategory
	}

	id := s.genID.Generate()
	images, err := marshalImages(req.Images)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:          id,
		Name:        name,
		Slug:        fmt.Sprintf("%s-%d", slug.Make(name), id%100000),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Images:      images,
		CategoryID:  categoryID,
		Status:      domain.TaskStatusOpen,
		CreatedByID: creatorID,
	}
	if err := s.repo.Create(ctx, s.db, task); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugExists
		}
		return nil, err
	}
	return task, nil
}

func (s *Service) Update(ctx context.Context, callerID snowflake.ID, req domain.UpdateTaskRequest) (*domain.Task, error) {
	id, err := snowflake.ParseString(req.ID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	task, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}
	if task.CreatedByID != callerID {
		return nil, domain.ErrNotOwner
	}
	if task.IsArchived {
		return nil, domain.ErrArchived
	}

	columns := map[string]any{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		columns["name"] = name
	}
	if req.Description != nil {
		columns["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if req.Price.IsNegative() || req.Price.IsZero() {
			return nil, domain.ErrInvalidPrice
		}
		columns["price"] = *req.Price
	}
	if req.Images != nil {
		images, err := marshalImages(req.Images)
		if err != nil {
			return nil, err
		}
		columns["images"] = images
	}
	if req.CategoryID != nil {
		categoryID, err := snowflake.ParseString(*req.CategoryID)
		if err != nil {
			return nil, domain.ErrInvalidCategory
		}
		category, err := s.repo.FindCategoryByID(ctx, s.db, categoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, domain.ErrInvalidCategory
		}
		columns["category_id"] = categoryID
	}

	if err := s.repo.Update(ctx, s.db, id, columns); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) GetBySlug(ctx context.Context, slugValue string) (*domain.Task, error) {
	task, err := s.repo.FindBySlug(ctx, s.db, slugValue)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}
	return task, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTaskRequest) (domain.ListTaskResponse, error) {
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	items, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return domain.ListTaskResponse{}, err
	}

	pageInfo, items := pagination.BuildCursorPageInfo(items, req.PageSize, func(t *domain.Task) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: t.ID.String()})
		return token
	})

	tasks := make([]domain.Task, 0, len(items))
	for _, item := range items {
		tasks = append(tasks, *item)
	}
	return domain.ListTaskResponse{PageInfo: *pageInfo, Tasks: tasks}, nil
}

func (s *Service) Archive(ctx context.Context, callerID snowflake.ID, id string) error {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return domain.ErrNotFound
	}
	task, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return err
	}
	if task == nil {
		return domain.ErrNotFound
	}
	if task.CreatedByID != callerID {
		return domain.ErrNotOwner
	}
	if task.IsArchived {
		return nil
	}

	now := time.Now().UTC()
	return s.repo.Update(ctx, s.db, parsed, map[string]any{
		"is_archived": true,
		"archived_at": now,
		"updated_at":  now,
	})
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx, s.db)
}

func marshalImages(images []string) (datatypes.JSON, error) {
	if images == nil {
		images = []string{}
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
