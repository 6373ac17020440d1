package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	cartdomain "github.com/smallbiznis/taskora/internal/cart/domain"
	invoicedomain "github.com/smallbiznis/taskora/internal/invoice/domain"
	"github.com/smallbiznis/taskora/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var item domain.Payment
	err := db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, columns map[string]any) error {
	return db.WithContext(ctx).Model(&domain.Payment{}).Where("id = ?", id).Updates(columns).Error
}

func (r *repo) ReparentCartInvoices(ctx context.Context, db *gorm.DB, cartID, paymentID snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("cart_id = ?", cartID).
		Updates(map[string]any{
			"payment_id": paymentID,
			"cart_id":    nil,
		})
	return res.RowsAffected, res.Error
}

func (r *repo) ClearCart(ctx context.Context, db *gorm.DB, cartID snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", cartID).Delete(&cartdomain.Cart{}).Error
}
