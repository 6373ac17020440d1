// Package server exposes the marketplace HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/taskora/internal/assignment"
	assignmentdomain "github.com/smallbiznis/taskora/internal/assignment/domain"
	"github.com/smallbiznis/taskora/internal/auth"
	authdomain "github.com/smallbiznis/taskora/internal/auth/domain"
	"github.com/smallbiznis/taskora/internal/cart"
	cartdomain "github.com/smallbiznis/taskora/internal/cart/domain"
	"github.com/smallbiznis/taskora/internal/config"
	"github.com/smallbiznis/taskora/internal/invoice"
	invoicedomain "github.com/smallbiznis/taskora/internal/invoice/domain"
	"github.com/smallbiznis/taskora/internal/messaging"
	messagingdomain "github.com/smallbiznis/taskora/internal/messaging/domain"
	"github.com/smallbiznis/taskora/internal/observability"
	obsmiddleware "github.com/smallbiznis/taskora/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/taskora/internal/observability/metrics"
	obstracing "github.com/smallbiznis/taskora/internal/observability/tracing"
	"github.com/smallbiznis/taskora/internal/payment"
	paymentdomain "github.com/smallbiznis/taskora/internal/payment/domain"
	"github.com/smallbiznis/taskora/internal/providers"
	"github.com/smallbiznis/taskora/internal/ratelimit"
	"github.com/smallbiznis/taskora/internal/review"
	reviewdomain "github.com/smallbiznis/taskora/internal/review/domain"
	"github.com/smallbiznis/taskora/internal/task"
	taskdomain "github.com/smallbiznis/taskora/internal/task/domain"
	"github.com/smallbiznis/taskora/internal/user"
	userdomain "github.com/smallbiznis/taskora/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	providers.Module,
	user.Module,
	auth.Module,
	task.Module,
	assignment.Module,
	review.Module,
	invoice.Module,
	cart.Module,
	payment.Module,
	messaging.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(log, obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	marketplace   *config.MarketplaceConfigHolder
	limiter       ratelimit.Limiter
	authSvc       authdomain.Service
	userSvc       userdomain.Service
	taskSvc       taskdomain.Service
	assignmentSvc assignmentdomain.Service
	reviewSvc     reviewdomain.Service
	invoiceSvc    invoicedomain.Service
	cartSvc       cartdomain.Service
	paymentSvc    paymentdomain.Service
	messagingSvc  messagingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	Marketplace   *config.MarketplaceConfigHolder
	Limiter       ratelimit.Limiter
	AuthSvc       authdomain.Service
	UserSvc       userdomain.Service
	TaskSvc       taskdomain.Service
	AssignmentSvc assignmentdomain.Service
	ReviewSvc     reviewdomain.Service
	InvoiceSvc    invoicedomain.Service
	CartSvc       cartdomain.Service
	PaymentSvc    paymentdomain.Service
	MessagingSvc  messagingdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		marketplace:   p.Marketplace,
		limiter:       p.Limiter,
		authSvc:       p.AuthSvc,
		userSvc:       p.UserSvc,
		taskSvc:       p.TaskSvc,
		assignmentSvc: p.AssignmentSvc,
		reviewSvc:     p.ReviewSvc,
		invoiceSvc:    p.InvoiceSvc,
		cartSvc:       p.CartSvc,
		paymentSvc:    p.PaymentSvc,
		messagingSvc:  p.MessagingSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")
	auth.Use(ratelimit.Middleware(s.limiter, s.marketplace, s.log))

	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(ratelimit.Middleware(s.limiter, s.marketplace, s.log))
	api.Use(s.CartContext())

	// -------- Catalog --------
	api.GET("/categories", s.ListCategories)
	api.GET("/tasks", s.ListTasks)
	api.GET("/tasks/:slug", s.GetTask)
	api.POST("/tasks", s.AuthRequired(), s.RequireRole(userdomain.RoleClient), s.CreateTask)
	api.PATCH("/tasks/:id", s.AuthRequired(), s.RequireRole(userdomain.RoleClient), s.UpdateTask)
	api.POST("/tasks/:id/archive", s.AuthRequired(), s.RequireRole(userdomain.RoleClient), s.ArchiveTask)

	// -------- Users --------
	api.GET("/users/:id", s.GetUser)

	// -------- Assignments --------
	api.POST("/assignments", s.AuthRequired(), s.RequireRole(userdomain.RoleClient), s.CreateAssignment)
	api.GET("/assignments", s.AuthRequired(), s.ListAssignments)
	api.GET("/assignments/:id", s.AuthRequired(), s.GetAssignment)
	api.PATCH("/assignments/:id/status", s.AuthRequired(), s.RequireRole(userdomain.RoleContractor), s.UpdateAssignmentStatus)
	api.POST("/assignments/:id/accept", s.AuthRequired(), s.RequireRole(userdomain.RoleClient), s.AcceptAssignment)

	// -------- Reviews --------
	api.GET("/assignments/:id/reviews", s.AuthRequired(), s.ListAssignmentReviews)
	api.POST("/reviews/contractor", s.AuthRequired(), s.RequireRole(userdomain.RoleClient), s.SubmitContractorReview)
	api.POST("/reviews/client", s.AuthRequired(), s.RequireRole(userdomain.RoleContractor), s.SubmitClientReview)

	// -------- Invoices --------
	api.POST("/invoices", s.AuthRequired(), s.RequireRole(userdomain.RoleContractor), s.CreateInvoice)
	api.PATCH("/invoices", s.AuthRequired(), s.RequireRole(userdomain.RoleContractor), s.UpdateInvoice)
	api.GET("/invoices/:number", s.AuthRequired(), s.GetInvoice)
	api.GET("/invoices/:number/pdf", s.AuthRequired(), s.RenderInvoicePDF)

	// -------- Cart --------
	api.GET("/cart", s.GetCart)
	api.POST("/cart/invoices", s.AuthRequired(), s.AddInvoiceToCart)

	// -------- Payments --------
	api.POST("/payments", s.AuthRequired(), s.CreatePayment)
	api.GET("/payments/:id", s.AuthRequired(), s.GetPayment)
	api.POST("/payments/:id/paypal/order", s.AuthRequired(), s.CreatePayPalOrder)
	api.POST("/payments/:id/paypal/capture", s.AuthRequired(), s.CapturePayPal)

	// -------- Messaging --------
	api.POST("/conversations/contact", s.AuthRequired(), s.ContactAboutTask)
	api.GET("/conversations", s.AuthRequired(), s.ListConversations)
	api.GET("/conversations/:id/messages", s.AuthRequired(), s.ListMessages)
	api.POST("/conversations/:id/messages", s.AuthRequired(), s.SendMessage)
}
