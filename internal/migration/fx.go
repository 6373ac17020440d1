package migration

import (
	assignmentdomain "github.com/smallbiznis/taskora/internal/assignment/domain"
	authdomain "github.com/smallbiznis/taskora/internal/auth/domain"
	cartdomain "github.com/smallbiznis/taskora/internal/cart/domain"
	"github.com/smallbiznis/taskora/internal/config"
	invoicedomain "github.com/smallbiznis/taskora/internal/invoice/domain"
	messagingdomain "github.com/smallbiznis/taskora/internal/messaging/domain"
	paymentdomain "github.com/smallbiznis/taskora/internal/payment/domain"
	reviewdomain "github.com/smallbiznis/taskora/internal/review/domain"
	"github.com/smallbiznis/taskora/internal/seed"
	taskdomain "github.com/smallbiznis/taskora/internal/task/domain"
	userdomain "github.com/smallbiznis/taskora/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// The versioned SQL targets postgres; other dialects are for
			// development and tests where the model-derived schema suffices.
			if err := conn.AutoMigrate(
				&userdomain.User{},
				&authdomain.Session{},
				&taskdomain.Category{},
				&taskdomain.Task{},
				&assignmentdomain.TaskAssignment{},
				&reviewdomain.Review{},
				&paymentdomain.Payment{},
				&cartdomain.Cart{},
				&invoicedomain.Invoice{},
				&invoicedomain.InvoiceItem{},
				&messagingdomain.Conversation{},
				&messagingdomain.ConversationParticipant{},
				&messagingdomain.Message{},
			); err != nil {
				return err
			}
		}

		if err := seed.EnsureCategories(conn); err != nil {
			return err
		}
		if cfg.Bootstrap.SeedDemoAccounts {
			return seed.EnsureDemoAccounts(conn)
		}
		return nil
	}),
)
