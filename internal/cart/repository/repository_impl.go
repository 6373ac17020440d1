package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/taskora/internal/cart/domain"
	invoicedomain "github.com/smallbiznis/taskora/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindBySessionID(ctx context.Context, db *gorm.DB, sessionCartID string) (*domain.Cart, error) {
	var item domain.Cart
	err := db.WithContext(ctx).
		Preload("Invoices").
		First(&item, "session_cart_id = ?", strings.TrimSpace(sessionCartID)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, cart *domain.Cart) error {
	return db.WithContext(ctx).Omit("Invoices").Create(cart).Error
}

func (r *repo) AttachInvoice(ctx context.Context, db *gorm.DB, cartID, invoiceID snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("id = ? AND payment_id IS NULL", invoiceID).
		Update("cart_id", cartID).Error
}

func (r *repo) RecomputeTotal(ctx context.Context, db *gorm.DB, cartID snowflake.ID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("cart_id = ?", cartID).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	err = db.WithContext(ctx).
		Model(&domain.Cart{}).
		Where("id = ?", cartID).
		Update("total_price", total).Error
	return total, err
}

func (r *repo) AdoptUser(ctx context.Context, db *gorm.DB, sessionCartID string, userID snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&domain.Cart{}).
		Where("session_cart_id = ? AND user_id IS NULL", sessionCartID).
		Update("user_id", userID).Error
}

func (r *repo) DeleteBySessionID(ctx context.Context, db *gorm.DB, sessionCartID string) error {
	return db.WithContext(ctx).
		Where("session_cart_id = ?", sessionCartID).
		Delete(&domain.Cart{}).Error
}
