package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	assignmentdomain "github.com/smallbiznis/taskora/internal/assignment/domain"
	"github.com/smallbiznis/taskora/internal/config"
	"github.com/smallbiznis/taskora/internal/notify"
	"github.com/smallbiznis/taskora/internal/review/domain"
	userdomain "github.com/smallbiznis/taskora/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Repo           domain.Repository
	AssignmentRepo assignmentdomain.Repository
	UserRepo       userdomain.Repository
	Marketplace    *config.MarketplaceConfigHolder
	Dispatcher     notify.Dispatcher
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	repo           domain.Repository
	assignmentRepo assignmentdomain.Repository
	userRepo       userdomain.Repository
	marketplace    *config.MarketplaceConfigHolder
	dispatcher     notify.Dispatcher
}

func NewService(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("review.service"),
		genID:          p.GenID,
		repo:           p.Repo,
		assignmentRepo: p.AssignmentRepo,
		userRepo:       p.UserRepo,
		marketplace:    p.Marketplace,
		dispatcher:     p.Dispatcher,
	}
}

func (s *Service) SubmitContractorReview(ctx context.Context, reviewerID snowflake.ID, req domain.SubmitReviewRequest) (*domain.Review, error) {
	return s.submit(ctx, reviewerID, req, domain.TypeContractorReview)
}

func (s *Service) SubmitClientReview(ctx context.Context, reviewerID snowflake.ID, req domain.SubmitReviewRequest) (*domain.Review, error) {
	return s.submit(ctx, reviewerID, req, domain.TypeClientReview)
}

func (s *Service) submit(ctx context.Context, reviewerID snowflake.ID, req domain.SubmitReviewRequest, reviewType domain.ReviewType) (*domain.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	assignmentID, err := snowflake.ParseString(req.AssignmentID)
	if err != nil {
		return nil, domain.ErrAssignmentMissing
	}
	assignment, err := s.assignmentRepo.FindByID(ctx, s.db, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, domain.ErrAssignmentMissing
	}

	var revieweeID snowflake.ID
	var side userdomain.Role
	switch reviewType {
	case domain.TypeContractorReview:
		if assignment.ClientID != reviewerID {
			return nil, domain.ErrNotParticipant
		}
		revieweeID = assignment.ContractorID
		side = userdomain.RoleContractor
	case domain.TypeClientReview:
		if assignment.ContractorID != reviewerID {
			return nil, domain.ErrNotParticipant
		}
		revieweeID = assignment.ClientID
		side = userdomain.RoleClient
	default:
		return nil, domain.ErrNotParticipant
	}

	var review *domain.Review
	err = s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindExisting(ctx, tx, assignmentID, reviewerID, reviewType)
		if err != nil {
			return err
		}
		if existing != nil {
			// Resubmission replaces the earlier review instead of piling on a
			// second row for the same assignment and reviewer.
			if err := s.repo.Update(ctx, tx, existing.ID, map[string]any{
				"rating":      req.Rating,
				"description": req.Description,
				"updated_at":  time.Now().UTC(),
			}); err != nil {
				return err
			}
			existing.Rating = req.Rating
			existing.Description = req.Description
			review = existing
		} else {
			review = &domain.Review{
				ID:           s.genID.Generate(),
				AssignmentID: assignmentID,
				ReviewerID:   reviewerID,
				RevieweeID:   revieweeID,
				Rating:       req.Rating,
				Description:  req.Description,
				Type:         reviewType,
			}
			if err := s.repo.Create(ctx, tx, review); err != nil {
				return err
			}
		}

		ratings, err := s.repo.ListRatingsForReviewee(ctx, tx, revieweeID, reviewType)
		if err != nil {
			return err
		}
		return s.userRepo.UpdateRating(ctx, tx, revieweeID, side, domain.AverageRating(ratings), int64(len(ratings)))
	})
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("New review: %s %s", stars(req.Rating),
		truncate(req.Description, s.marketplace.Current().FeedbackTruncateAt))
	if err := s.dispatcher.SystemMessage(ctx, assignmentID, strings.TrimSpace(text), map[string]any{
		"event":         notify.EventReviewSubmitted,
		"assignment_id": assignmentID.String(),
		"rating":        req.Rating,
		"review_type":   string(reviewType),
	}); err != nil {
		s.log.Warn("failed to dispatch review notification",
			zap.String("assignment_id", assignmentID.String()),
			zap.Error(err),
		)
	}
	return review, nil
}

func (s *Service) ListByAssignment(ctx context.Context, assignmentID string) ([]domain.Review, error) {
	parsed, err := snowflake.ParseString(assignmentID)
	if err != nil {
		return nil, domain.ErrAssignmentMissing
	}
	return s.repo.ListByAssignment(ctx, s.db, parsed)
}

func stars(rating int) string {
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func truncate(text string, limit int) string {
	runes := []rune(strings.TrimSpace(text))
	if limit <= 0 || len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}
