package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopcart/internal/service"
	"github.com/Skotchmaster/shopcart/internal/transport"
	"github.com/Skotchmaster/shopcart/pkg/logging"
)

type AccountHTTP struct {
	Svc *service.AccountService
}

func (h *AccountHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.me")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "me_error", err)
	}
	user, err := h.Svc.GetUser(ctx, actor, actor.UserID)
	if err != nil {
		return httpError(c, l, "me_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AccountHTTP) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.update_me")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "update_me_error", err)
	}

	var req transport.PatchUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_me_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.UpdateUser(ctx, actor, actor.UserID, req)
	if err != nil {
		return httpError(c, l, "update_me_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AccountHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.get_user")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "get_user_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.Svc.GetUser(ctx, actor, id)
	if err != nil {
		return httpError(c, l, "get_user_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AccountHTTP) GetUserByName(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.get_user_by_name")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "get_user_error", err)
	}

	user, err := h.Svc.GetUserByName(ctx, actor, c.Param("username"))
	if err != nil {
		return httpError(c, l, "get_user_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AccountHTTP) GetUserByEmail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.get_user_by_email")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "get_user_error", err)
	}

	user, err := h.Svc.GetUserByEmail(ctx, actor, c.QueryParam("email"))
	if err != nil {
		return httpError(c, l, "get_user_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AccountHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.delete_user")

	actor, err := actorFrom(c)
	if err != nil {
		return httpError(c, l, "delete_user_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteUser(ctx, actor, id); err != nil {
		return httpError(c, l, "delete_user_error", err)
	}

	l.Info("user_deleted", "user_id", id)
	return c.NoContent(http.StatusNoContent)
}
