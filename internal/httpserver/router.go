package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcart/pkg/db"
	"github.com/Skotchmaster/shopcart/pkg/logging"
	middleware "github.com/Skotchmaster/shopcart/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	AccountHandler *AccountHTTP
	AddressHandler *AddressHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	JWTSecret      []byte
	DB             *gorm.DB
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthHandler)

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.LogOut, authMW.RequireAuth)

	users := e.Group("/users")
	users.GET("/me", d.AccountHandler.Me, authMW.RequireAuth)
	users.PATCH("/me", d.AccountHandler.UpdateMe, authMW.RequireAuth)
	users.GET("/by-name/:username", d.AccountHandler.GetUserByName, authMW.RequireAdmin)
	users.GET("/by-email", d.AccountHandler.GetUserByEmail, authMW.RequireAdmin)
	users.GET("/:id", d.AccountHandler.GetUser, authMW.RequireAdmin)
	users.DELETE("/:id", d.AccountHandler.DeleteUser, authMW.RequireAdmin)

	addresses := e.Group("/addresses", authMW.RequireAuth)
	addresses.GET("", d.AddressHandler.List)
	addresses.POST("", d.AddressHandler.Create)
	addresses.GET("/:id", d.AddressHandler.Get)
	addresses.PATCH("/:id", d.AddressHandler.Update)
	addresses.DELETE("/:id", d.AddressHandler.Delete)

	products := e.Group("/products")
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	admin := products.Group("", authMW.RequireAdmin)
	admin.POST("", d.CatalogHandler.CreateProduct)
	admin.PATCH("/:id", d.CatalogHandler.PatchProduct)
	admin.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	carts := e.Group("/carts", authMW.RequireAuth)
	carts.GET("", d.CartHandler.ListCarts)
	carts.DELETE("", d.CartHandler.DeleteAllCarts)
	carts.GET("/open", d.CartHandler.GetOpenCart)
	carts.POST("/open", d.CartHandler.OpenCart)
	carts.POST("/open/items", d.CartHandler.AddToOpenCart)
	carts.POST("/checkout", d.CartHandler.Checkout)
	carts.GET("/items/:item_id", d.CartHandler.GetItem)
	carts.PATCH("/items/:item_id", d.CartHandler.UpdateItem)
	carts.DELETE("/items/:item_id", d.CartHandler.RemoveItem)
	carts.GET("/:id", d.CartHandler.GetCart)
	carts.DELETE("/:id", d.CartHandler.DeleteCart)
	carts.POST("/:id/items", d.CartHandler.AddItem)
	carts.POST("/:id/cancel", d.CartHandler.Cancel)
}

func (d *Deps) ready(c echo.Context) error {
	if d.DB == nil {
		return c.NoContent(http.StatusOK)
	}
	if err := db.Ping(c.Request().Context(), d.DB); err != nil {
		logging.FromContext(c.Request().Context()).Error("readiness_failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}
	return c.NoContent(http.StatusOK)
}
