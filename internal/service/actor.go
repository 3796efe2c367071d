package service

import (
	"fmt"
	"strconv"

	"github.com/Skotchmaster/shopcart/pkg/tokens"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uint
	Admin  bool
}

// ActorFrom builds an Actor from the subject and role carried by an access token.
func ActorFrom(subject, role string) (Actor, error) {
	id, err := strconv.ParseUint(subject, 10, 64)
	if err != nil || id == 0 {
		return Actor{}, fmt.Errorf("subject %q: %w", subject, ErrUnauthorized)
	}
	return Actor{UserID: uint(id), Admin: role == tokens.RoleAdmin}, nil
}

func (a Actor) owns(ownerID uint) bool {
	return a.Admin || a.UserID == ownerID
}

func authorize(a Actor, ownerID uint, what string) error {
	if !a.owns(ownerID) {
		return fmt.Errorf("%s belongs to another user: %w", what, ErrForbidden)
	}
	return nil
}

func requireAdmin(a Actor) error {
	if !a.Admin {
		return fmt.Errorf("admin access required: %w", ErrForbidden)
	}
	return nil
}
