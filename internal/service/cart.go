package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/shopcart/internal/events"
	"github.com/Skotchmaster/shopcart/internal/models"
	"github.com/Skotchmaster/shopcart/internal/notify"
	"github.com/Skotchmaster/shopcart/internal/repo"
	"github.com/Skotchmaster/shopcart/internal/transport"
)

type CartService struct {
	Repo     *repo.GormRepo
	Events   events.Publisher
	Notifier notify.Notifier
}

func (s *CartService) GetOpenCart(ctx context.Context, actor Actor) (*models.Cart, error) {
	cart, err := s.Repo.GetOpenCart(ctx, actor.UserID)
	if err != nil {
		return nil, mapRepoErr("open cart", err)
	}
	return cart, nil
}

// OpenCart returns the caller's open cart, creating it on first use. created
// reports whether this call made it.
func (s *CartService) OpenCart(ctx context.Context, actor Actor) (*models.Cart, bool, error) {
	cart, created, err := s.Repo.CreateCart(ctx, actor.UserID)
	if err != nil {
		return nil, false, mapRepoErr("open cart", err)
	}
	if created {
		publish(ctx, s.Events, events.TopicCart, actor.UserID, map[string]any{
			"type":   "cart_created",
			"cartID": cart.ID,
			"userID": actor.UserID,
		})
	}
	return cart, created, nil
}

func validateAddItem(req transport.AddItemRequest) error {
	if req.ProductID == 0 {
		return fmt.Errorf("product_id is required: %w", ErrValidation)
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive: %w", ErrValidation)
	}
	return nil
}

// AddToOpenCart adds to the caller's open cart, creating it if needed. A cart
// that leaves OPEN between lookup and insert fails the call with
// ErrInvalidState.
func (s *CartService) AddToOpenCart(ctx context.Context, actor Actor, req transport.AddItemRequest) (*models.CartItem, error) {
	if err := validateAddItem(req); err != nil {
		return nil, err
	}

	cart, _, err := s.OpenCart(ctx, actor)
	if err != nil {
		return nil, err
	}

	item, err := s.Repo.AddItem(ctx, cart.ID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("add item to cart %d", cart.ID), err)
	}

	s.itemEvent(ctx, "cart_item_added", actor, item)
	return item, nil
}

// AddItem adds to a specific cart, which must be open and the caller's.
func (s *CartService) AddItem(ctx context.Context, actor Actor, cartID uint, req transport.AddItemRequest) (*models.CartItem, error) {
	if err := validateAddItem(req); err != nil {
		return nil, err
	}
	if _, err := s.ownedCart(ctx, actor, cartID); err != nil {
		return nil, err
	}

	item, err := s.Repo.AddItem(ctx, cartID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, mapRepoErr("add item", err)
	}
	s.itemEvent(ctx, "cart_item_added", actor, item)
	return item, nil
}

func (s *CartService) UpdateItem(ctx context.Context, actor Actor, itemID uint, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrValidation)
	}
	if _, err := s.ownedItem(ctx, actor, itemID); err != nil {
		return nil, err
	}

	item, err := s.Repo.UpdateItem(ctx, itemID, quantity)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("item %d", itemID), err)
	}
	s.itemEvent(ctx, "cart_item_updated", actor, item)
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, actor Actor, itemID uint) error {
	if _, err := s.ownedItem(ctx, actor, itemID); err != nil {
		return err
	}

	item, err := s.Repo.RemoveItem(ctx, itemID)
	if err != nil {
		return mapRepoErr(fmt.Sprintf("item %d", itemID), err)
	}
	s.itemEvent(ctx, "cart_item_removed", actor, item)
	return nil
}

// GetItem reads one line, with its product, from a cart the caller owns.
func (s *CartService) GetItem(ctx context.Context, actor Actor, itemID uint) (*models.CartItem, error) {
	return s.ownedItem(ctx, actor, itemID)
}

func (s *CartService) GetCart(ctx context.Context, actor Actor, cartID uint) (*models.Cart, error) {
	return s.ownedCart(ctx, actor, cartID)
}

// ListCarts pages through carts. A non-admin always sees their own carts; an
// admin sees userID's, or everyone's when userID is 0.
func (s *CartService) ListCarts(ctx context.Context, actor Actor, userID uint, status string, offset, limit int) (int64, []models.Cart, error) {
	st := models.CartStatus(status)
	if st != "" && !st.Valid() {
		return 0, nil, fmt.Errorf("unknown status %q: %w", status, ErrValidation)
	}

	if !actor.Admin {
		if userID != 0 && userID != actor.UserID {
			return 0, nil, fmt.Errorf("carts of user %d: %w", userID, ErrForbidden)
		}
		userID = actor.UserID
	}

	total, carts, err := s.Repo.ListCarts(ctx, userID, st, offset, limit)
	if err != nil {
		return 0, nil, mapRepoErr("list carts", err)
	}
	return total, carts, nil
}

func (s *CartService) DeleteCart(ctx context.Context, actor Actor, cartID uint) error {
	cart, err := s.ownedCart(ctx, actor, cartID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteCart(ctx, cartID); err != nil {
		return mapRepoErr(fmt.Sprintf("cart %d", cartID), err)
	}

	publish(ctx, s.Events, events.TopicCart, cart.UserID, map[string]any{
		"type":   "cart_deleted",
		"cartID": cartID,
		"userID": cart.UserID,
	})
	return nil
}

// DeleteAllCarts removes every cart the caller has, whatever its status.
func (s *CartService) DeleteAllCarts(ctx context.Context, actor Actor) (int64, error) {
	n, err := s.Repo.DeleteUserCarts(ctx, actor.UserID)
	if err != nil {
		return 0, mapRepoErr("delete carts", err)
	}

	publish(ctx, s.Events, events.TopicCart, actor.UserID, map[string]any{
		"type":    "carts_cleared",
		"userID":  actor.UserID,
		"deleted": n,
	})
	return n, nil
}

func (s *CartService) ownedCart(ctx context.Context, actor Actor, cartID uint) (*models.Cart, error) {
	cart, err := s.Repo.GetCart(ctx, cartID)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("cart %d", cartID), err)
	}
	if err := authorize(actor, cart.UserID, fmt.Sprintf("cart %d", cartID)); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) ownedItem(ctx context.Context, actor Actor, itemID uint) (*models.CartItem, error) {
	item, err := s.Repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, mapRepoErr(fmt.Sprintf("item %d", itemID), err)
	}
	if _, err := s.ownedCart(ctx, actor, item.CartID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CartService) itemEvent(ctx context.Context, kind string, actor Actor, item *models.CartItem) {
	publish(ctx, s.Events, events.TopicCart, actor.UserID, map[string]any{
		"type":      kind,
		"cartID":    item.CartID,
		"itemID":    item.ID,
		"productID": item.ProductID,
		"quantity":  item.Quantity,
		"userID":    actor.UserID,
	})
}
