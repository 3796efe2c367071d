package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/shopcart/internal/events"
	"github.com/Skotchmaster/shopcart/internal/models"
	"github.com/Skotchmaster/shopcart/pkg/logging"
)

// Checkout closes the caller's open cart and takes its quantities out of
// stock. The confirmation email is sent after commit and never fails the call.
func (s *CartService) Checkout(ctx context.Context, actor Actor) (*models.Cart, error) {
	l := logging.FromContext(ctx).With("svc", "cart.checkout", "user_id", actor.UserID)

	cart, err := s.Repo.Checkout(ctx, actor.UserID)
	if err != nil {
		return nil, mapRepoErr("checkout", err)
	}

	publish(ctx, s.Events, events.TopicCart, actor.UserID, map[string]any{
		"type":       "cart_checked_out",
		"cartID":     cart.ID,
		"userID":     actor.UserID,
		"totalPrice": cart.TotalPrice.String(),
		"items":      len(cart.Items),
	})
	l.Info("cart_checked_out", "cart_id", cart.ID, "total", cart.TotalPrice.String())

	s.confirm(ctx, cart)
	return cart, nil
}

func (s *CartService) confirm(ctx context.Context, cart *models.Cart) {
	if s.Notifier == nil {
		return
	}
	l := logging.FromContext(ctx)

	user, err := s.Repo.GetUserByID(ctx, cart.UserID)
	if err != nil {
		l.Warn("checkout_email_error", "cart_id", cart.ID, "error", err)
		return
	}
	if err := s.Notifier.CheckoutConfirmed(ctx, user, cart); err != nil {
		l.Warn("checkout_email_error", "cart_id", cart.ID, "error", err)
	}
}

func (s *CartService) Cancel(ctx context.Context, actor Actor, cartID uint) (*models.Cart, error) {
	if _, err := s.ownedCart(ctx, actor, cartID); err != nil {
		return nil, err
	}

	cart, err := s.Repo.Cancel(ctx, cartID)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("cancel cart %d", cartID), err)
	}

	publish(ctx, s.Events, events.TopicCart, cart.UserID, map[string]any{
		"type":   "cart_cancelled",
		"cartID": cart.ID,
		"userID": cart.UserID,
	})
	return cart, nil
}
