package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/taskora/internal/auth/domain"
	"github.com/smallbiznis/taskora/internal/auth/password"
	cartdomain "github.com/smallbiznis/taskora/internal/cart/domain"
	"github.com/smallbiznis/taskora/internal/config"
	userdomain "github.com/smallbiznis/taskora/internal/user/domain"
	"github.com/smallbiznis/taskora/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config   config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	UserRepo userdomain.Repository
	CartRepo cartdomain.Repository
}

type Service struct {
	cfg      config.Config
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	userRepo userdomain.Repository
	cartRepo cartdomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		cfg:      p.Config,
		db:       p.DB,
		log:      p.Log.Named("auth.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		userRepo: p.UserRepo,
		cartRepo: p.CartRepo,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*userdomain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, userdomain.ErrInvalidEmail
	}
	if req.Role != userdomain.RoleClient && req.Role != userdomain.RoleContractor {
		return nil, domain.ErrInvalidRequest
	}

	existing, err := s.userRepo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &userdomain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: hashed,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Role:         req.Role,
	}
	if err := s.userRepo.Create(ctx, s.db, user); err != nil {
		// Concurrent registration of the same address still loses here.
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(user.PasswordHash, req.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(time.Duration(s.cfg.SessionTTLHours) * time.Hour),
	}
	if err := s.repo.CreateSession(ctx, s.db, session); err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	}, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string, sessionCartID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if sessionID != "" {
			if err := s.repo.DeleteSession(ctx, tx, sessionID); err != nil {
				return err
			}
		}
		// Sign-out abandons the session cart along with the login.
		if sessionCartID != "" {
			if err := s.cartRepo.DeleteBySessionID(ctx, tx, sessionCartID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) Resolve(ctx context.Context, sessionID string) (*domain.Principal, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.ErrInvalidSession
	}

	session, err := s.repo.FindSession(ctx, s.db, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrInvalidSession
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		if err := s.repo.DeleteSession(ctx, s.db, sessionID); err != nil {
			s.log.Warn("failed to delete expired session", zap.Error(err))
		}
		return nil, domain.ErrSessionExpired
	}

	user, err := s.userRepo.FindByID(ctx, s.db, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidSession
	}
	return &domain.Principal{UserID: user.ID, Role: user.Role}, nil
}
