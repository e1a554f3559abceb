package models

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type OrdersRepository struct {
	db *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		db: db,
	}
}

// Create persists the order's variation, its lettering items and the order
// itself in one transaction.
func (r *OrdersRepository) Create(ctx context.Context, order *Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		variation := &order.Product
		items := variation.LetteringItems

		if err := tx.Omit("Product", "ProductColor", "LetteringItems").Create(variation).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].ProductVariationID = variation.ID
		}
		if len(items) > 0 {
			if err := tx.Omit("LetteringItemCategory").Create(&items).Error; err != nil {
				return err
			}
		}

		order.ProductID = variation.ID
		return tx.Omit("Product", "Payment").Create(order).Error
	})
}

func (r *OrdersRepository) GetByID(ctx context.Context, id uint) (*Order, error) {
	var order Order
	if err := PreloadVariation(r.db.WithContext(ctx), "Product.").
		Preload("Payment").
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// UpdateBuyerDetails overwrites the non-empty fields of details on an unpaid order.
func (r *OrdersRepository) UpdateBuyerDetails(ctx context.Context, id uint, details BuyerDetails) error {
	res := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND ordered = ?", id, false).
		Updates(Order{BuyerDetails: details})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOrPaid(ctx, id)
	}
	return nil
}

// ClaimCharge marks the order as being charged under token. Only one caller
// can hold the claim; a claim older than staleBefore may be taken over.
func (r *OrdersRepository) ClaimCharge(ctx context.Context, id uint, token string, now, staleBefore time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND ordered = ?", id, false).
		Where("(charge_token IS NULL OR charge_claimed_at < ?)", staleBefore).
		Updates(map[string]any{
			"charge_token":      token,
			"charge_claimed_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if err := r.missingOrPaid(ctx, id); err != nil {
			return err
		}
		return ErrPaymentInProgress
	}
	return nil
}

// ReleaseCharge gives up a claim after a gateway call that captured nothing,
// and moves the order on to a fresh idempotency key.
func (r *OrdersRepository) ReleaseCharge(ctx context.Context, id uint, token string) error {
	return r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND charge_token = ?", id, token).
		Updates(map[string]any{
			"charge_token":      nil,
			"charge_claimed_at": nil,
			"charge_attempt":    gorm.Expr("charge_attempt + 1"),
		}).Error
}

// CompletePayment records payment and marks the order as ordered, both or neither.
func (r *OrdersRepository) CompletePayment(ctx context.Context, id uint, token string, payment *Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment.OrderID = id
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		res := tx.Model(&Order{}).
			Where("id = ? AND ordered = ? AND charge_token = ?", id, false, token).
			Updates(map[string]any{
				"ordered":           true,
				"payment_id":        payment.ID,
				"charge_token":      nil,
				"charge_claimed_at": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPaymentInProgress
		}
		return nil
	})
}

func (r *OrdersRepository) missingOrPaid(ctx context.Context, id uint) error {
	var order Order
	err := r.db.WithContext(ctx).Select("id", "ordered").First(&order, id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrOrderNotFound
	case err != nil:
		return err
	case order.Ordered:
		return ErrOrderAlreadyPaid
	}
	return nil
}
