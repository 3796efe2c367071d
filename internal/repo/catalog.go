package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcart/internal/models"
	"github.com/Skotchmaster/shopcart/internal/transport"
)

var ErrInUse = errors.New("referenced by cart items")

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern matches s as a literal substring under LIKE ... ESCAPE '\'.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) getProductsForUpdate(ctx context.Context, ids []uint) (map[uint]*models.Product, error) {
	var products []models.Product
	if err := r.DB.WithContext(ctx).
		Clauses(lockForUpdate).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}

	out := make(map[uint]*models.Product, len(products))
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

// DecrementStock subtracts amount from the product's stock only if enough is
// left, so concurrent decrements can never drive stock below zero.
func (r *GormRepo) DecrementStock(ctx context.Context, id uint, amount int) error {
	if amount <= 0 {
		return ErrInvalidQuantity
	}

	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, amount).
		Update("stock", gorm.Expr("stock - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	if _, err := r.GetProduct(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("product %d: %w", id, ErrInsufficientStock)
}

func (r *GormRepo) ListProducts(ctx context.Context, name string, offset, limit int) (int64, []models.Product, error) {
	name = strings.TrimSpace(name)
	byName := func(db *gorm.DB) *gorm.DB {
		if name == "" {
			return db
		}
		return db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(name))
	}
	return r.pageProducts(ctx, byName, "id ASC", offset, limit)
}

// SearchProducts is the store-side fallback used when no search index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	pattern := likePattern(query)
	matches := func(db *gorm.DB) *gorm.DB {
		return db.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	return r.pageProducts(ctx, matches, "name ASC", offset, limit)
}

func (r *GormRepo) pageProducts(ctx context.Context, scope func(*gorm.DB) *gorm.DB, order string, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Scopes(scope).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).Scopes(scope).Order(order).Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product %q: %w", prod.Name, ErrDuplicate)
		}
		return err
	}
	return nil
}

func (r *GormRepo) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	var prod models.Product
	err := r.withTx(ctx, func(tx *GormRepo) error {
		if err := tx.DB.Clauses(lockForUpdate).First(&prod, id).Error; err != nil {
			return err
		}

		if req.Name != nil {
			prod.Name = *req.Name
		}
		if req.Description != nil {
			prod.Description = *req.Description
		}
		if req.ImageURL != nil {
			prod.ImageURL = *req.ImageURL
		}
		if req.Price != nil {
			prod.Price = *req.Price
		}
		if req.Stock != nil {
			prod.Stock = *req.Stock
		}

		if err := tx.DB.Save(&prod).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("product %q: %w", prod.Name, ErrDuplicate)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

// DeleteProduct refuses to drop a product that any cart still references.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.withTx(ctx, func(tx *GormRepo) error {
		var refs int64
		if err := tx.DB.Model(&models.CartItem{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("product %d: %w", id, ErrInUse)
		}

		res := tx.DB.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
