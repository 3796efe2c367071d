package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcart/internal/models"
)

var ErrTokenRevoked = errors.New("refresh token expired or revoked")

func (r *GormRepo) AddRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("jti = ?", jti).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *GormRepo) RevokeRefresh(ctx context.Context, tokenHash string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", tokenHash).
		Update("revoked", true).Error
}

// RotateRefreshToken revokes oldJTI and stores next atomically. A refresh
// token is redeemable once; later attempts get ErrTokenRevoked.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, oldHash string, next *models.RefreshToken) error {
	return r.withTx(ctx, func(tx *GormRepo) error {
		var current models.RefreshToken
		if err := tx.DB.Clauses(lockForUpdate).Where("jti = ?", oldJTI).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenRevoked
			}
			return err
		}
		if current.Revoked || current.Token != oldHash || current.ExpiresAt < time.Now().Unix() {
			return ErrTokenRevoked
		}

		if err := tx.DB.Model(&current).Update("revoked", true).Error; err != nil {
			return err
		}
		return tx.DB.Create(next).Error
	})
}
