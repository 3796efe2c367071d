package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/shopcart/internal/models"
	"github.com/Skotchmaster/shopcart/internal/repo"
	"github.com/Skotchmaster/shopcart/internal/transport"
)

type AddressService struct {
	Repo *repo.GormRepo
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func (s *AddressService) Create(ctx context.Context, actor Actor, req transport.CreateAddressRequest) (*models.Address, error) {
	if blank(req.Country) || blank(req.City) || blank(req.Street) {
		return nil, fmt.Errorf("country, city and street are required: %w", ErrValidation)
	}

	a := &models.Address{
		UserID:  actor.UserID,
		Country: strings.TrimSpace(req.Country),
		City:    strings.TrimSpace(req.City),
		Street:  strings.TrimSpace(req.Street),
	}
	if err := s.Repo.CreateAddress(ctx, a); err != nil {
		return nil, mapRepoErr("create address", err)
	}
	return a, nil
}

func (s *AddressService) Get(ctx context.Context, actor Actor, id uint) (*models.Address, error) {
	a, err := s.Repo.GetAddress(ctx, id)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("address %d", id), err)
	}
	if err := authorize(actor, a.UserID, "address"); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns the addresses of userID; 0 means the caller's own.
func (s *AddressService) List(ctx context.Context, actor Actor, userID uint) ([]models.Address, error) {
	if userID == 0 {
		userID = actor.UserID
	}
	if err := authorize(actor, userID, "addresses"); err != nil {
		return nil, err
	}
	items, err := s.Repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, mapRepoErr("list addresses", err)
	}
	return items, nil
}

func (s *AddressService) Update(ctx context.Context, actor Actor, id uint, req transport.PatchAddressRequest) (*models.Address, error) {
	for _, f := range []*string{req.Country, req.City, req.Street} {
		if f != nil && blank(*f) {
			return nil, fmt.Errorf("address fields cannot be blank: %w", ErrValidation)
		}
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}

	a, err := s.Repo.PatchAddress(ctx, id, req)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("address %d", id), err)
	}
	return a, nil
}

func (s *AddressService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.Repo.DeleteAddress(ctx, id); err != nil {
		return mapRepoErr(fmt.Sprintf("address %d", id), err)
	}
	return nil
}
