package service

import (
	"context"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	cartdomain "github.com/smallbiznis/taskora/internal/cart/domain"
	"github.com/smallbiznis/taskora/internal/config"
	invoicedomain "github.com/smallbiznis/taskora/internal/invoice/domain"
	"github.com/smallbiznis/taskora/internal/notify"
	"github.com/smallbiznis/taskora/internal/payment/adapters"
	"github.com/smallbiznis/taskora/internal/payment/domain"
	"github.com/smallbiznis/taskora/internal/providers/email"
	"github.com/smallbiznis/taskora/internal/providers/pdf"
	userdomain "github.com/smallbiznis/taskora/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	CartRepo    cartdomain.Repository
	InvoiceRepo invoicedomain.Repository
	UserRepo    userdomain.Repository
	Registry    *adapters.Registry
	Marketplace *config.MarketplaceConfigHolder
	PDF         pdf.Provider
	Email       email.Provider
	Dispatcher  notify.Dispatcher
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	cartRepo    cartdomain.Repository
	invoiceRepo invoicedomain.Repository
	userRepo    userdomain.Repository
	registry    *adapters.Registry
	marketplace *config.MarketplaceConfigHolder
	pdf         pdf.Provider
	email       email.Provider
	dispatcher  notify.Dispatcher
}

func NewService(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		cartRepo:    p.CartRepo,
		invoiceRepo: p.InvoiceRepo,
		userRepo:    p.UserRepo,
		registry:    p.Registry,
		marketplace: p.Marketplace,
		pdf:         p.PDF,
		email:       p.Email,
		dispatcher:  p.Dispatcher,
	}
}

func (s *Service) CreateFromCart(ctx context.Context, userID snowflake.ID, sessionCartID, method string) (*domain.Payment, error) {
	if method == "" {
		return nil, domain.ErrMethodRequired
	}
	if s.registry.Resolve(method) == nil {
		return nil, domain.ErrUnknownMethod
	}

	cart, err := s.cartRepo.FindBySessionID(ctx, s.db, sessionCartID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Invoices) == 0 {
		return nil, domain.ErrCartEmpty
	}

	amount := decimal.Zero
	for _, invoice := range cart.Invoices {
		amount = amount.Add(invoice.TotalPrice)
	}

	payment := &domain.Payment{
		ID:            s.genID.Generate(),
		UserID:        userID,
		Amount:        amount,
		PaymentMethod: method,
		PaymentResult: datatypes.JSONMap{},
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, payment); err != nil {
			return err
		}
		rows, err := s.repo.ReparentCartInvoices(ctx, tx, cart.ID, payment.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrCartEmpty
		}
		return s.repo.ClearCart(ctx, tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *Service) CreatePayPalOrder(ctx context.Context, paymentID string) (*domain.GatewayResult, error) {
	payment, err := s.getPending(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	gateway := s.registry.Resolve(payment.PaymentMethod)
	if gateway == nil {
		return nil, domain.ErrUnknownMethod
	}

	result, err := gateway.CreateOrder(ctx, payment.Amount, s.marketplace.Current().Currency)
	if err != nil {
		return nil, err
	}

	// The order id is the handle ApprovePayPal verifies the capture against.
	if err := s.repo.Update(ctx, s.db, payment.ID, map[string]any{
		"payment_result": datatypes.JSONMap{
			"order_id": result.ID,
			"status":   result.Status,
		},
		"updated_at": time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) ApprovePayPal(ctx context.Context, paymentID string, orderID string) (*domain.Payment, error) {
	payment, err := s.getPending(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	stored, _ := payment.PaymentResult["order_id"].(string)
	if stored == "" {
		return nil, domain.ErrOrderNotCreated
	}
	if orderID != stored {
		return nil, domain.ErrCaptureMismatch
	}

	gateway := s.registry.Resolve(payment.PaymentMethod)
	if gateway == nil {
		return nil, domain.ErrUnknownMethod
	}

	result, err := gateway.CaptureOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if result.ID != stored || result.Status != domain.GatewayStatusCompleted {
		return nil, domain.ErrCaptureMismatch
	}
	return s.MarkPaid(ctx, paymentID, *result)
}

func (s *Service) MarkPaid(ctx context.Context, paymentID string, result domain.GatewayResult) (*domain.Payment, error) {
	parsed, err := snowflake.ParseString(paymentID)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		payment, err := s.repo.FindByID(ctx, tx, parsed)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.ErrNotFound
		}
		if payment.IsPaid {
			return domain.ErrAlreadyPaid
		}

		merged := datatypes.JSONMap{}
		for k, v := range payment.PaymentResult {
			merged[k] = v
		}
		merged["id"] = result.ID
		merged["status"] = result.Status
		merged["email_address"] = result.EmailAddress
		merged["update_time"] = now.Format(time.RFC3339)

		return s.repo.Update(ctx, tx, parsed, map[string]any{
			"is_paid":        true,
			"paid_at":        now,
			"payment_result": merged,
			"updated_at":     now,
		})
	})
	if err != nil {
		return nil, err
	}

	payment, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}

	// Receipt delivery and conversation notices ride behind the state change;
	// their failures must not surface to the payer.
	go s.afterPaid(context.WithoutCancel(ctx), payment)

	return payment, nil
}

func (s *Service) GetByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	parsed, err := snowflake.ParseString(paymentID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	payment, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}
	return payment, nil
}

func (s *Service) getPending(ctx context.Context, paymentID string) (*domain.Payment, error) {
	parsed, err := snowflake.ParseString(paymentID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	payment, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}
	if payment.IsPaid {
		return nil, domain.ErrAlreadyPaid
	}
	return payment, nil
}

func (s *Service) afterPaid(ctx context.Context, payment *domain.Payment) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	invoices, err := s.invoiceRepo.ListByPayment(ctx, s.db, payment.ID)
	if err != nil {
		s.log.Warn("failed to load invoices for receipt", zap.Error(err))
		return
	}

	for _, invoice := range invoices {
		for _, item := range invoice.Items {
			if err := s.dispatcher.SystemMessage(ctx, item.AssignmentID,
				"Payment received for invoice "+invoice.InvoiceNumber+".",
				map[string]any{
					"event":          notify.EventPaymentReceived,
					"payment_id":     payment.ID.String(),
					"invoice_number": invoice.InvoiceNumber,
				}); err != nil {
				s.log.Warn("failed to dispatch payment notification",
					zap.String("invoice_number", invoice.InvoiceNumber),
					zap.Error(err),
				)
			}
			break
		}
	}

	s.sendReceipt(ctx, payment, invoices)
}

func (s *Service) sendReceipt(ctx context.Context, payment *domain.Payment, invoices []invoicedomain.Invoice) {
	payer, err := s.userRepo.FindByID(ctx, s.db, payment.UserID)
	if err != nil || payer == nil {
		s.log.Warn("failed to resolve payer for receipt", zap.Error(err))
		return
	}

	cfg := s.marketplace.Current()
	data := pdf.ReceiptData{
		InvoiceData: pdf.InvoiceData{
			Currency:    cfg.Currency,
			ClientName:  payer.DisplayName,
			ClientEmail: payer.Email,
			Total:       payment.Amount.StringFixed(2),
		},
		DatePaid:      time.Now().UTC().Format("2006-01-02"),
		PaymentMethod: payment.PaymentMethod,
	}
	if payment.PaidAt != nil {
		data.DatePaid = payment.PaidAt.Format("2006-01-02")
	}

	lines := make([]invoicedomain.TotalLine, 0)
	for _, invoice := range invoices {
		if data.InvoiceNumber == "" {
			data.InvoiceNumber = invoice.InvoiceNumber
			data.IssueDate = invoice.CreatedAt.Format("2006-01-02")
		}
		for _, item := range invoice.Items {
			lines = append(lines, invoicedomain.TotalLine{Price: item.Price, Qty: item.Qty})
			data.Items = append(data.Items, pdf.LineItem{
				Description: item.Name,
				Qty:         item.Qty,
				UnitPrice:   item.Price.StringFixed(2),
				Amount:      item.Price.Mul(decimal.NewFromInt(item.Qty)).StringFixed(2),
			})
		}
	}
	totals := invoicedomain.CalculateTotals(lines, decimal.NewFromFloat(cfg.TaxRate))
	data.Subtotal = totals.Subtotal
	data.Tax = totals.Tax

	reader, err := s.pdf.GenerateReceipt(ctx, data)
	if err != nil {
		s.log.Warn("failed to render receipt", zap.Error(err))
		return
	}

	var attachments []email.Attachment
	if reader != nil {
		raw, err := io.ReadAll(reader)
		if err != nil {
			s.log.Warn("failed to read rendered receipt", zap.Error(err))
			return
		}
		attachments = append(attachments, email.Attachment{
			Filename:    "receipt-" + payment.ID.String() + ".pdf",
			ContentType: "application/pdf",
			Data:        raw,
		})
	}

	body := "<p>Thank you for your payment of " + payment.Amount.StringFixed(2) + " " + cfg.Currency + ".</p>"
	if err := s.email.SendWithAttachments(ctx, []string{payer.Email}, "Your payment receipt", body, attachments); err != nil {
		s.log.Warn("failed to send receipt email",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
	}
}
