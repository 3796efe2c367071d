package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopcart/internal/service"
	"github.com/Skotchmaster/shopcart/internal/transport"
	"github.com/Skotchmaster/shopcart/pkg/logging"
	middleware "github.com/Skotchmaster/shopcart/pkg/middleware/auth"
	"github.com/Skotchmaster/shopcart/pkg/tokens"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func pairOf(res *transport.LoginResult) *middleware.Tokens {
	return &middleware.Tokens{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		AccessExp:    res.AccessExp,
		RefreshExp:   res.RefreshExp,
	}
}

// RefreshTokens lets the auth middleware rotate tokens in-process.
func (h *AuthHTTP) RefreshTokens(ctx context.Context, refreshToken string) (*middleware.Tokens, error) {
	res, err := h.Svc.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return pairOf(res), nil
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return httpError(c, l, "register_error", err)
	}

	l.Info("user_registered", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return httpError(c, l, "login_error", err)
	}
	middleware.SetAuthCookies(c, pairOf(res))

	l.Info("login_successful", "user_id", res.UserID)
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  res.UserID,
		"is_admin": res.IsAdmin,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	ck, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || ck.Value == "" {
		l.Warn("refresh_error", "status", 401, "reason", "no refresh cookie")
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	res, err := h.Svc.Refresh(ctx, ck.Value)
	if err != nil {
		middleware.ClearAuthCookies(c)
		return httpError(c, l, "refresh_error", err)
	}
	middleware.SetAuthCookies(c, pairOf(res))

	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  res.UserID,
		"is_admin": res.IsAdmin,
	})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	var raw string
	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
		raw = ck.Value
	}
	err := h.Svc.LogOut(ctx, raw)
	middleware.ClearAuthCookies(c)
	if err != nil {
		return httpError(c, l, "logout_error", err)
	}

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
