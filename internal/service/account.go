package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/shopcart/internal/events"
	"github.com/Skotchmaster/shopcart/internal/models"
	"github.com/Skotchmaster/shopcart/internal/repo"
	"github.com/Skotchmaster/shopcart/internal/transport"
	pkg_hash "github.com/Skotchmaster/shopcart/pkg/hash"
)

type AccountService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *AccountService) GetUser(ctx context.Context, actor Actor, id uint) (*models.User, error) {
	if err := authorize(actor, id, "user"); err != nil {
		return nil, err
	}
	u, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("user %d", id), err)
	}
	return u, nil
}

// GetUserByName is an admin lookup by exact username.
func (s *AccountService) GetUserByName(ctx context.Context, actor Actor, username string) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", ErrValidation)
	}
	u, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("user %q", username), err)
	}
	return u, nil
}

func (s *AccountService) GetUserByEmail(ctx context.Context, actor Actor, email string) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if !validEmail(email) {
		return nil, fmt.Errorf("email is invalid: %w", ErrValidation)
	}
	u, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("user %q", email), err)
	}
	return u, nil
}

// UpdateUser applies a partial update; a new password is re-hashed.
func (s *AccountService) UpdateUser(ctx context.Context, actor Actor, id uint, req transport.PatchUserRequest) (*models.User, error) {
	if err := authorize(actor, id, "user"); err != nil {
		return nil, err
	}

	patch := repo.UserPatch{FirstName: req.FirstName, LastName: req.LastName}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if !validEmail(email) {
			return nil, fmt.Errorf("email is invalid: %w", ErrValidation)
		}
		patch.Email = &email
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLen {
			return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, ErrValidation)
		}
		h, err := pkg_hash.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w: %w", ErrStore, err)
		}
		patch.PasswordHash = &h
	}

	u, err := s.Repo.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("user %d", id), err)
	}
	return u, nil
}

// DeleteUser is admin-only and takes the user's carts, addresses and
// refresh tokens with it.
func (s *AccountService) DeleteUser(ctx context.Context, actor Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		return mapRepoErr(fmt.Sprintf("user %d", id), err)
	}

	publish(ctx, s.Events, events.TopicUser, id, map[string]any{
		"type":   "user_deleted",
		"userID": id,
	})
	return nil
}
