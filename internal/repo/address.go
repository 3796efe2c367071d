package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcart/internal/models"
	"github.com/Skotchmaster/shopcart/internal/transport"
)

func (r *GormRepo) CreateAddress(ctx context.Context, a *models.Address) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *GormRepo) GetAddress(ctx context.Context, id uint) (*models.Address, error) {
	var a models.Address
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormRepo) ListAddresses(ctx context.Context, userID uint) ([]models.Address, error) {
	items := make([]models.Address, 0)
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) PatchAddress(ctx context.Context, id uint, req transport.PatchAddressRequest) (*models.Address, error) {
	var a models.Address
	err := r.withTx(ctx, func(tx *GormRepo) error {
		if err := tx.DB.First(&a, id).Error; err != nil {
			return err
		}

		if req.Country != nil {
			a.Country = *req.Country
		}
		if req.City != nil {
			a.City = *req.City
		}
		if req.Street != nil {
			a.Street = *req.Street
		}

		return tx.DB.Save(&a).Error
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormRepo) DeleteAddress(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Address{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
