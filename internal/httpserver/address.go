package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopcart/internal/service"
	"github.com/Skotchmaster/shopcart/internal/transport"
	"github.com/Skotchmaster/shopcart/internal/util"
	"github.com/Skotchmaster/shopcart/pkg/logging"
)

type AddressHTTP struct {
	Svc *service.AddressService
}

func (h *AddressHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.list")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "list_addresses_error", err)
	}

	list, err := h.Svc.List(ctx, actor, util.ParseUintDefault(c.QueryParam("user_id"), 0))
	if err != nil {
		return httpError(c, l, "list_addresses_error", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AddressHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.get")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "get_address_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	addr, err := h.Svc.Get(ctx, actor, id)
	if err != nil {
		return httpError(c, l, "get_address_error", err)
	}
	return c.JSON(http.StatusOK, addr)
}

func (h *AddressHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.create")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "create_address_error", err)
	}

	var req transport.CreateAddressRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_address_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	addr, err := h.Svc.Create(ctx, actor, req)
	if err != nil {
		return httpError(c, l, "create_address_error", err)
	}
	return c.JSON(http.StatusCreated, addr)
}

func (h *AddressHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.update")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "update_address_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req transport.PatchAddressRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_address_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	addr, err := h.Svc.Update(ctx, actor, id, req)
	if err != nil {
		return httpError(c, l, "update_address_error", err)
	}
	return c.JSON(http.StatusOK, addr)
}

func (h *AddressHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.delete")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "delete_address_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, actor, id); err != nil {
		return httpError(c, l, "delete_address_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
