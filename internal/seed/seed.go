// Package seed bootstraps reference data so a fresh install is usable
// immediately.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taskora/internal/auth/password"
	taskdomain "github.com/smallbiznis/taskora/internal/task/domain"
	userdomain "github.com/smallbiznis/taskora/internal/user/domain"
	"gorm.io/gorm"
)

var defaultCategories = []struct {
	Name string
	Slug string
}{
	{"Cleaning", "cleaning"},
	{"Gardening", "gardening"},
	{"Handyman", "handyman"},
	{"Moving", "moving"},
	{"Pet care", "pet-care"},
	{"Tutoring", "tutoring"},
}

const (
	demoClientEmail     = "client@taskora.local"
	demoContractorEmail = "contractor@taskora.local"
	demoPassword        = "password123"
)

// EnsureCategories inserts the default task categories when missing.
func EnsureCategories(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range defaultCategories {
			var existing taskdomain.Category
			err := tx.WithContext(ctx).Where("slug = ?", c.Slug).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := tx.WithContext(ctx).Create(&taskdomain.Category{
				ID:   node.Generate(),
				Name: c.Name,
				Slug: c.Slug,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// EnsureDemoAccounts seeds one client and one contractor for local
// development. Never enabled in production.
func EnsureDemoAccounts(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUserTx(ctx, tx, node, demoClientEmail, "Demo Client", userdomain.RoleClient); err != nil {
			return err
		}
		return ensureUserTx(ctx, tx, node, demoContractorEmail, "Demo Contractor", userdomain.RoleContractor)
	})
}

func ensureUserTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, email, display string, role userdomain.Role) error {
	var existing userdomain.User
	err := tx.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := password.Hash(demoPassword)
	if err != nil {
		return err
	}
	return tx.WithContext(ctx).Create(&userdomain.User{
		ID:           node.Generate(),
		Email:        email,
		PasswordHash: hashed,
		DisplayName:  display,
		Role:         role,
	}).Error
}
