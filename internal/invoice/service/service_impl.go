package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	assignmentdomain "github.com/smallbiznis/taskora/internal/assignment/domain"
	"github.com/smallbiznis/taskora/internal/config"
	"github.com/smallbiznis/taskora/internal/invoice/domain"
	"github.com/smallbiznis/taskora/internal/providers/pdf"
	"github.com/smallbiznis/taskora/pkg/db"
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
	Marketplace    *config.MarketplaceConfigHolder
	PDF            pdf.Provider
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	repo           domain.Repository
	assignmentRepo assignmentdomain.Repository
	marketplace    *config.MarketplaceConfigHolder
	pdf            pdf.Provider
}

func NewService(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("invoice.service"),
		genID:          p.GenID,
		repo:           p.Repo,
		assignmentRepo: p.AssignmentRepo,
		marketplace:    p.Marketplace,
		pdf:            p.PDF,
	}
}

func (s *Service) Create(ctx context.Context, contractorID snowflake.ID, req domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	if len(req.Items) == 0 {
		return nil, domain.ErrInvalidItems
	}
	clientID, err := snowflake.ParseString(req.ClientID)
	if err != nil {
		return nil, domain.ErrAssignmentNotFound
	}
	if req.ContractorID != "" {
		parsed, err := snowflake.ParseString(req.ContractorID)
		if err != nil || parsed != contractorID {
			return nil, domain.ErrNotParty
		}
	}

	cfg := s.marketplace.Current()
	totals := domain.CalculateTotals(totalLines(req.Items), decimal.NewFromFloat(cfg.TaxRate))
	total, err := decimal.NewFromString(totals.Total)
	if err != nil {
		return nil, err
	}

	id := s.genID.Generate()
	invoice := &domain.Invoice{
		ID:            id,
		InvoiceNumber: fmt.Sprintf("%s-%d-%05d", cfg.InvoicePrefix, time.Now().Unix(), id%100000),
		ClientID:      clientID,
		ContractorID:  contractorID,
		TotalPrice:    total,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, invoice); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrNumberExists
			}
			return err
		}
		for _, item := range req.Items {
			taskID, err := snowflake.ParseString(item.TaskID)
			if err != nil {
				return domain.ErrAssignmentNotFound
			}
			// Every billed line must trace back to an actual engagement
			// between the two parties; a miss rolls the whole invoice back.
			assignment, err := s.assignmentRepo.FindQualifying(ctx, tx, taskID, clientID, contractorID)
			if err != nil {
				return err
			}
			if assignment == nil {
				return domain.ErrAssignmentNotFound
			}

			line := domain.TotalLine{Price: item.Price, Qty: item.Qty, Quantity: item.Quantity}
			if err := s.repo.CreateItem(ctx, tx, &domain.InvoiceItem{
				ID:           s.genID.Generate(),
				InvoiceID:    invoice.ID,
				TaskID:       taskID,
				AssignmentID: assignment.ID,
				Name:         item.Name,
				Qty:          line.EffectiveQty(),
				Price:        item.Price,
				Hours:        item.Hours,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.FindByNumber(ctx, s.db, invoice.InvoiceNumber)
}

func (s *Service) Update(ctx context.Context, req domain.UpdateInvoiceRequest) (*domain.Invoice, error) {
	invoice, err := s.repo.FindByNumber(ctx, s.db, req.InvoiceNumber)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}

	cfg := s.marketplace.Current()
	totals := domain.CalculateTotals(totalLines(req.Items), decimal.NewFromFloat(cfg.TaxRate))
	total, err := decimal.NewFromString(totals.Total)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTotal(ctx, s.db, invoice.ID, total); err != nil {
		return nil, err
	}
	invoice.TotalPrice = total
	return invoice, nil
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return s.repo.FindByNumber(ctx, s.db, number)
}

func (s *Service) RenderPDF(ctx context.Context, number string) (io.Reader, error) {
	invoice, err := s.repo.FindByNumber(ctx, s.db, number)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return s.pdf.GenerateInvoice(ctx, BuildInvoiceData(invoice, s.marketplace.Current()))
}

// BuildInvoiceData flattens an invoice and its associations into the render
// model. Shared with the payment service for receipt rendering.
func BuildInvoiceData(invoice *domain.Invoice, cfg config.MarketplaceConfig) pdf.InvoiceData {
	lines := make([]domain.TotalLine, 0, len(invoice.Items))
	items := make([]pdf.LineItem, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		lines = append(lines, domain.TotalLine{Price: item.Price, Qty: item.Qty})
		items = append(items, pdf.LineItem{
			Description: item.Name,
			Qty:         item.Qty,
			UnitPrice:   item.Price.StringFixed(2),
			Amount:      item.Price.Mul(decimal.NewFromInt(item.Qty)).StringFixed(2),
		})
	}
	totals := domain.CalculateTotals(lines, decimal.NewFromFloat(cfg.TaxRate))

	data := pdf.InvoiceData{
		InvoiceNumber: invoice.InvoiceNumber,
		IssueDate:     invoice.CreatedAt.Format("2006-01-02"),
		Currency:      cfg.Currency,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         invoice.TotalPrice.StringFixed(2),
	}
	if invoice.Client != nil {
		data.ClientName = invoice.Client.DisplayName
		data.ClientEmail = invoice.Client.Email
	}
	if invoice.Contractor != nil {
		data.ContractorName = invoice.Contractor.DisplayName
		data.ContractorEmail = invoice.Contractor.Email
	}
	return data
}

func totalLines(items []domain.CreateInvoiceItem) []domain.TotalLine {
	lines := make([]domain.TotalLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.TotalLine{Price: item.Price, Qty: item.Qty, Quantity: item.Quantity})
	}
	return lines
}
