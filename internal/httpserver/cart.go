package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopcart/internal/models"
	"github.com/Skotchmaster/shopcart/internal/service"
	"github.com/Skotchmaster/shopcart/internal/transport"
	"github.com/Skotchmaster/shopcart/internal/util"
	"github.com/Skotchmaster/shopcart/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func statusResponse(cart *models.Cart) transport.CartStatusResponse {
	return transport.CartStatusResponse{
		CartID:     cart.ID,
		Status:     string(cart.Status),
		TotalPrice: cart.TotalPrice,
	}
}

func (h *CartHTTP) ListCarts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.list")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "list_carts_error", err)
	}

	p, offset, limit := page(c)
	userID := util.ParseUintDefault(c.QueryParam("user_id"), 0)
	total, carts, err := h.Svc.ListCarts(ctx, actor, userID, c.QueryParam("status"), offset, limit)
	if err != nil {
		return httpError(c, l, "list_carts_error", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": carts,
		"meta": util.Meta(p, offset, limit, total),
	})
}

func (h *CartHTTP) GetOpenCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_open")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "get_open_cart_error", err)
	}

	cart, err := h.Svc.GetOpenCart(ctx, actor)
	if err != nil {
		return httpError(c, l, "get_open_cart_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) OpenCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.open")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "open_cart_error", err)
	}

	cart, created, err := h.Svc.OpenCart(ctx, actor)
	if err != nil {
		return httpError(c, l, "open_cart_error", err)
	}
	if created {
		l.Info("cart_created", "cart_id", cart.ID)
		return c.JSON(http.StatusCreated, cart)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddToOpenCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_to_open")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "add_item_error", err)
	}

	var req transport.AddItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_item_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.AddToOpenCart(ctx, actor, req)
	if err != nil {
		return httpError(c, l, "add_item_error", err)
	}

	l.Info("item added to cart", "cart_id", item.CartID, "product_id", item.ProductID)
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "add_item_error", err)
	}
	cartID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req transport.AddItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_item_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.AddItem(ctx, actor, cartID, req)
	if err != nil {
		return httpError(c, l, "add_item_error", err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "update_item_error", err)
	}
	itemID, err := parseID(c, "item_id")
	if err != nil {
		return err
	}

	var req transport.UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_item_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.UpdateItem(ctx, actor, itemID, req.Quantity)
	if err != nil {
		return httpError(c, l, "update_item_error", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) GetItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_item")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "get_item_error", err)
	}
	itemID, err := parseID(c, "item_id")
	if err != nil {
		return err
	}

	item, err := h.Svc.GetItem(ctx, actor, itemID)
	if err != nil {
		return httpError(c, l, "get_item_error", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "remove_item_error", err)
	}
	itemID, err := parseID(c, "item_id")
	if err != nil {
		return err
	}

	if err := h.Svc.RemoveItem(ctx, actor, itemID); err != nil {
		return httpError(c, l, "remove_item_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "get_cart_error", err)
	}
	cartID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	cart, err := h.Svc.GetCart(ctx, actor, cartID)
	if err != nil {
		return httpError(c, l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) DeleteCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.delete")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "delete_cart_error", err)
	}
	cartID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteCart(ctx, actor, cartID); err != nil {
		return httpError(c, l, "delete_cart_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) DeleteAllCarts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.delete_all")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "delete_all_carts_error", err)
	}

	n, err := h.Svc.DeleteAllCarts(ctx, actor)
	if err != nil {
		return httpError(c, l, "delete_all_carts_error", err)
	}

	l.Info("carts cleared", "deleted", n)
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "checkout_error", err)
	}

	cart, err := h.Svc.Checkout(ctx, actor)
	if err != nil {
		return httpError(c, l, "checkout_error", err)
	}
	return c.JSON(http.StatusOK, statusResponse(cart))
}

func (h *CartHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.cancel")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "cancel_error", err)
	}
	cartID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	cart, err := h.Svc.Cancel(ctx, actor, cartID)
	if err != nil {
		return httpError(c, l, "cancel_error", err)
	}
	return c.JSON(http.StatusOK, statusResponse(cart))
}
