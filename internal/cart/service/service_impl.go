package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taskora/internal/cart/domain"
	invoicedomain "github.com/smallbiznis/taskora/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	InvoiceRepo invoicedomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	invoiceRepo invoicedomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("cart.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
	}
}

func (s *Service) GetOrCreate(ctx context.Context, sessionCartID string, userID *snowflake.ID) (*domain.Cart, error) {
	sessionCartID = strings.TrimSpace(sessionCartID)
	if sessionCartID == "" {
		return nil, domain.ErrNotFound
	}

	cart, err := s.repo.FindBySessionID(ctx, s.db, sessionCartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &domain.Cart{
			ID:            s.genID.Generate(),
			UserID:        userID,
			SessionCartID: sessionCartID,
		}
		if err := s.repo.Create(ctx, s.db, cart); err != nil {
			return nil, err
		}
		return cart, nil
	}

	// An anonymous cart follows the session into the signed-in account.
	if cart.UserID == nil && userID != nil {
		if err := s.repo.AdoptUser(ctx, s.db, sessionCartID, *userID); err != nil {
			return nil, err
		}
		cart.UserID = userID
	}
	return cart, nil
}

func (s *Service) AddInvoice(ctx context.Context, sessionCartID string, invoiceNumber string) (*domain.Cart, error) {
	cart, err := s.GetOrCreate(ctx, sessionCartID, nil)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindByNumber(ctx, s.db, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrInvoiceMissing
	}
	if invoice.PaymentID != nil {
		return nil, domain.ErrInvoicePaid
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.AttachInvoice(ctx, tx, cart.ID, invoice.ID); err != nil {
			return err
		}
		_, err := s.repo.RecomputeTotal(ctx, tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindBySessionID(ctx, s.db, sessionCartID)
}

func (s *Service) Get(ctx context.Context, sessionCartID string) (*domain.Cart, error) {
	cart, err := s.repo.FindBySessionID(ctx, s.db, sessionCartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, domain.ErrNotFound
	}
	return cart, nil
}
