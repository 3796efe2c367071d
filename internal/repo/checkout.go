package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcart/internal/models"
	"github.com/Skotchmaster/shopcart/internal/pricing"
)

// Checkout moves the user's open cart to CHECKED_OUT and takes every line's
// quantity out of stock. Either all of it happens or none of it does.
func (r *GormRepo) Checkout(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.withTx(ctx, func(tx *GormRepo) error {
		err := tx.DB.WithContext(ctx).
			Clauses(lockForUpdate).
			Where("user_id = ? AND status = ?", userID, models.CartOpen).
			First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return err
		}

		return tx.checkoutLocked(ctx, &cart)
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) checkoutLocked(ctx context.Context, cart *models.Cart) error {
	if !cart.Status.CanTransition(models.CartCheckedOut) {
		return fmt.Errorf("cart %d is %s: %w", cart.ID, cart.Status, ErrInvalidState)
	}

	var items []models.CartItem
	if err := r.DB.WithContext(ctx).Where("cart_id = ?", cart.ID).Order("product_id ASC").Find(&items).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("cart %d: %w", cart.ID, ErrEmptyCart)
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := r.getProductsForUpdate(ctx, ids)
	if err != nil {
		return err
	}

	for i := range items {
		p, ok := products[items[i].ProductID]
		if !ok {
			return fmt.Errorf("product %d: %w", items[i].ProductID, gorm.ErrRecordNotFound)
		}
		if err := checkStock(p, items[i].Quantity); err != nil {
			return err
		}
		items[i].Product = p
	}

	total := pricing.Total(items)

	for i := range items {
		if err := r.DecrementStock(ctx, items[i].ProductID, items[i].Quantity); err != nil {
			return err
		}
		items[i].Product.Stock -= items[i].Quantity
	}

	now := time.Now().UTC()
	if err := r.DB.WithContext(ctx).Model(cart).Updates(map[string]any{
		"status":         models.CartCheckedOut,
		"total_price":    total,
		"checked_out_at": now,
	}).Error; err != nil {
		return err
	}

	cart.Status = models.CartCheckedOut
	cart.TotalPrice = total
	cart.CheckedOutAt = &now
	cart.Items = items
	return nil
}

// Cancel moves an open cart to CANCELLED. Stock is untouched since nothing
// was reserved.
func (r *GormRepo) Cancel(ctx context.Context, cartID uint) (*models.Cart, error) {
	var cart *models.Cart
	err := r.withTx(ctx, func(tx *GormRepo) error {
		locked, err := tx.lockCart(ctx, cartID)
		if err != nil {
			return err
		}
		if !locked.Status.CanTransition(models.CartCancelled) {
			return fmt.Errorf("cart %d is %s: %w", locked.ID, locked.Status, ErrInvalidState)
		}

		if err := tx.DB.WithContext(ctx).Model(locked).Update("status", models.CartCancelled).Error; err != nil {
			return err
		}
		locked.Status = models.CartCancelled
		cart = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}
