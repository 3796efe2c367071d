package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcart/internal/repo"
)

var (
	ErrValidation          = errors.New("validation")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCredentials  = fmt.Errorf("invalid username or password: %w", ErrUnauthorized)
	ErrInvalidRefreshToken = fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	ErrConflict            = errors.New("conflict")
	ErrInvalidState        = fmt.Errorf("invalid cart state: %w", ErrConflict)
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrStore               = errors.New("store failure")
)

// mapRepoErr turns store errors into the service's error kinds. The underlying
// error stays in the chain for logging.
func mapRepoErr(what string, err error) error {
	var kind error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		kind = ErrNotFound
	case errors.Is(err, repo.ErrInsufficientStock):
		kind = ErrInsufficientStock
	case errors.Is(err, repo.ErrInvalidState):
		kind = ErrInvalidState
	case errors.Is(err, repo.ErrEmptyCart):
		kind = ErrEmptyCart
	case errors.Is(err, repo.ErrInvalidQuantity):
		kind = ErrValidation
	case errors.Is(err, repo.ErrDuplicate), errors.Is(err, repo.ErrInUse):
		kind = ErrConflict
	case errors.Is(err, repo.ErrTokenRevoked):
		kind = ErrInvalidRefreshToken
	default:
		kind = ErrStore
	}
	return fmt.Errorf("%s: %w: %w", what, kind, err)
}
