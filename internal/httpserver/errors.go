package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopcart/internal/service"
	loggingmw "github.com/Skotchmaster/shopcart/pkg/middleware/logging"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInsufficientStock), errors.Is(err, service.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func messageOf(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidState):
		return "cart is not open"
	case errors.Is(err, service.ErrInsufficientStock):
		return "insufficient stock"
	case errors.Is(err, service.ErrEmptyCart):
		return "cart is empty"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "invalid username or password"
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return "invalid refresh token"
	case errors.Is(err, service.ErrValidation):
		return err.Error()
	case errors.Is(err, service.ErrNotFound):
		return "not found"
	case errors.Is(err, service.ErrForbidden):
		return "forbidden"
	case errors.Is(err, service.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, service.ErrConflict):
		return "conflict"
	}
	return "internal error"
}

// httpError logs err under event and turns it into the response error. Store
// failures hide their cause behind the request id.
func httpError(c echo.Context, l *slog.Logger, event string, err error) error {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		rid := loggingmw.RequestID(c)
		l.Error(event, "status", code, "error", err, "ref", rid)
		return echo.NewHTTPError(code, echo.Map{"message": "internal error", "ref": rid})
	}
	l.Warn(event, "status", code, "error", err)
	return echo.NewHTTPError(code, messageOf(err))
}

func actorFrom(c echo.Context) (service.Actor, error) {
	sub, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	return service.ActorFrom(sub, role)
}

func parseID(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(v), nil
}
