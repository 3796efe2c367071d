package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcart/internal/models"
	"github.com/Skotchmaster/shopcart/internal/pricing"
)

func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id ASC") }).
		Preload("Items.Product")
}

func (r *GormRepo) GetCart(ctx context.Context, id uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Scopes(withItems).First(&cart, id).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOpenCart is a single lookup on (user_id, status = OPEN).
func (r *GormRepo) GetOpenCart(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).
		Scopes(withItems).
		Where("user_id = ? AND status = ?", userID, models.CartOpen).
		First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// CreateCart returns the user's open cart, inserting one if there is none.
// The partial unique index on open carts makes a concurrent insert fail; the
// loser reads back the winner's cart.
func (r *GormRepo) CreateCart(ctx context.Context, userID uint) (*models.Cart, bool, error) {
	cart, err := r.GetOpenCart(ctx, userID)
	if err == nil {
		return cart, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	cart = &models.Cart{
		UserID:     userID,
		Status:     models.CartOpen,
		TotalPrice: decimal.Zero,
	}
	if err := r.DB.WithContext(ctx).Create(cart).Error; err != nil {
		if !isUniqueViolation(err) {
			return nil, false, err
		}
		existing, gerr := r.GetOpenCart(ctx, userID)
		if gerr != nil {
			return nil, false, gerr
		}
		return existing, false, nil
	}

	cart.Items = []models.CartItem{}
	return cart, true, nil
}

func (r *GormRepo) GetItem(ctx context.Context, id uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).Preload("Product").First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListCarts pages through carts newest first. userID 0 lists every user's carts.
func (r *GormRepo) ListCarts(ctx context.Context, userID uint, status models.CartStatus, offset, limit int) (int64, []models.Cart, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if userID != 0 {
			db = db.Where("user_id = ?", userID)
		}
		if status != "" {
			db = db.Where("status = ?", status)
		}
		return db
	}

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Cart{}).Scopes(filter).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	carts := make([]models.Cart, 0, limit)
	if err := r.DB.WithContext(ctx).
		Scopes(filter, withItems).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&carts).Error; err != nil {
		return 0, nil, err
	}
	return total, carts, nil
}

// lockCart takes a row lock on the cart for the rest of the transaction.
func (r *GormRepo) lockCart(ctx context.Context, cartID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Clauses(lockForUpdate).First(&cart, cartID).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) lockOpenCart(ctx context.Context, cartID uint) (*models.Cart, error) {
	cart, err := r.lockCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.Status != models.CartOpen {
		return nil, fmt.Errorf("cart %d is %s: %w", cart.ID, cart.Status, ErrInvalidState)
	}
	return cart, nil
}

func (r *GormRepo) recomputeTotal(ctx context.Context, cartID uint) (decimal.Decimal, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).Preload("Product").Where("cart_id = ?", cartID).Find(&items).Error; err != nil {
		return decimal.Zero, err
	}

	total := pricing.Total(items)
	if err := r.DB.WithContext(ctx).Model(&models.Cart{ID: cartID}).Update("total_price", total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func checkStock(product *models.Product, want int) error {
	return checkAddStock(product, 0, want)
}

// checkAddStock reports whether add more units fit next to the held ones.
// It compares against what is left so a huge add cannot wrap the sum.
func checkAddStock(product *models.Product, held, add int) error {
	if add > product.Stock-held {
		return fmt.Errorf("product %d: have %d, holding %d, want %d more: %w",
			product.ID, product.Stock, held, add, ErrInsufficientStock)
	}
	return nil
}

// AddItem puts quantity units of a product into an open cart. An existing
// line for the product is merged; the merged quantity must fit the stock.
func (r *GormRepo) AddItem(ctx context.Context, cartID, productID uint, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var item models.CartItem
	err := r.withTx(ctx, func(tx *GormRepo) error {
		if _, err := tx.lockOpenCart(ctx, cartID); err != nil {
			return err
		}

		product, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}

		var existing models.CartItem
		err = tx.DB.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).First(&existing).Error
		switch {
		case err == nil:
			if err := checkAddStock(product, existing.Quantity, quantity); err != nil {
				return err
			}
			if err := tx.DB.WithContext(ctx).Model(&existing).
				Update("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
				return err
			}
			existing.Quantity += quantity
			item = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := checkStock(product, quantity); err != nil {
				return err
			}
			item = models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
			if err := tx.DB.WithContext(ctx).Create(&item).Error; err != nil {
				return err
			}
		default:
			return err
		}

		item.Product = product
		_, err = tx.recomputeTotal(ctx, cartID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem sets a line's quantity, re-validated against current stock.
func (r *GormRepo) UpdateItem(ctx context.Context, itemID uint, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var item models.CartItem
	err := r.withTx(ctx, func(tx *GormRepo) error {
		locked, err := tx.lockItemCart(ctx, itemID, &item)
		if err != nil {
			return err
		}
		if locked.Status != models.CartOpen {
			return fmt.Errorf("cart %d is %s: %w", locked.ID, locked.Status, ErrInvalidState)
		}

		product, err := tx.GetProduct(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if err := checkStock(product, quantity); err != nil {
			return err
		}

		if err := tx.DB.WithContext(ctx).Model(&item).Update("quantity", quantity).Error; err != nil {
			return err
		}
		item.Quantity = quantity
		item.Product = product

		_, err = tx.recomputeTotal(ctx, item.CartID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItem deletes one line from an open cart.
func (r *GormRepo) RemoveItem(ctx context.Context, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.withTx(ctx, func(tx *GormRepo) error {
		locked, err := tx.lockItemCart(ctx, itemID, &item)
		if err != nil {
			return err
		}
		if locked.Status != models.CartOpen {
			return fmt.Errorf("cart %d is %s: %w", locked.ID, locked.Status, ErrInvalidState)
		}

		if err := tx.DB.WithContext(ctx).Delete(&item).Error; err != nil {
			return err
		}

		_, err = tx.recomputeTotal(ctx, item.CartID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// lockItemCart locks the cart owning itemID and loads the item into dst. The
// item is read again under the lock since it may have gone in between.
func (r *GormRepo) lockItemCart(ctx context.Context, itemID uint, dst *models.CartItem) (*models.Cart, error) {
	if err := r.DB.WithContext(ctx).First(dst, itemID).Error; err != nil {
		return nil, err
	}
	cart, err := r.lockCart(ctx, dst.CartID)
	if err != nil {
		return nil, err
	}
	*dst = models.CartItem{}
	if err := r.DB.WithContext(ctx).First(dst, itemID).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// DeleteCart removes the cart and its items in one transaction.
func (r *GormRepo) DeleteCart(ctx context.Context, cartID uint) error {
	return r.withTx(ctx, func(tx *GormRepo) error {
		if _, err := tx.lockCart(ctx, cartID); err != nil {
			return err
		}
		if err := tx.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.DB.WithContext(ctx).Delete(&models.Cart{}, cartID).Error
	})
}

// DeleteUserCarts removes every cart of the user and returns how many went.
func (r *GormRepo) DeleteUserCarts(ctx context.Context, userID uint) (int64, error) {
	var deleted int64
	err := r.withTx(ctx, func(tx *GormRepo) error {
		cartIDs := tx.DB.WithContext(ctx).Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)
		if err := tx.DB.WithContext(ctx).Where("cart_id IN (?)", cartIDs).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Cart{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}
