package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcart/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q: %w", u.Username, ErrDuplicate)
		}
		return err
	}
	return nil
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UserPatch carries already-validated field updates; nil leaves a column as is.
type UserPatch struct {
	Email        *string
	FirstName    *string
	LastName     *string
	PasswordHash *string
}

func (r *GormRepo) UpdateUser(ctx context.Context, id uint, p UserPatch) (*models.User, error) {
	var user models.User
	err := r.withTx(ctx, func(tx *GormRepo) error {
		if err := tx.DB.First(&user, id).Error; err != nil {
			return err
		}

		if p.Email != nil {
			user.Email = *p.Email
		}
		if p.FirstName != nil {
			user.FirstName = *p.FirstName
		}
		if p.LastName != nil {
			user.LastName = *p.LastName
		}
		if p.PasswordHash != nil {
			user.PasswordHash = *p.PasswordHash
		}

		if err := tx.DB.Save(&user).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("email taken: %w", ErrDuplicate)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes the user together with everything it owns.
func (r *GormRepo) DeleteUser(ctx context.Context, id uint) error {
	return r.withTx(ctx, func(tx *GormRepo) error {
		var user models.User
		if err := tx.DB.Clauses(lockForUpdate).First(&user, id).Error; err != nil {
			return err
		}

		cartIDs := tx.DB.Model(&models.Cart{}).Select("id").Where("user_id = ?", id)
		if err := tx.DB.Where("cart_id IN (?)", cartIDs).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		for _, m := range []any{&models.Cart{}, &models.Address{}, &models.RefreshToken{}} {
			if err := tx.DB.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}

		res := tx.DB.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
