package httpserver

import (
	"context"
	"net/http"
	"time"

	middleware "github.com/Skotchmaster/cosmetics_shop/pkg/middleware/auth"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	CartHandler     *CartHTTP
	CheckoutHandler *CheckoutHTTP
	AddressHandler  *AddressHTTP
	OrderHandler    *OrderHTTP
	CatalogHandler  *CatalogHTTP
	JWTSecret       []byte
	AuthClient      middleware.Refresher
	DB              Pinger
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.DB == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.DB.PingContext(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)

	catalog := e.Group("/catalog")
	catalog.GET("/products", d.CatalogHandler.ListProducts)
	catalog.GET("/products/search", d.CatalogHandler.Search)
	catalog.GET("/products/:id", d.CatalogHandler.GetProduct)

	cart := e.Group("/cart", authMW.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("/add", d.CartHandler.AddItem)
	cart.PUT("/item/:itemId", d.CartHandler.UpdateItem)
	cart.DELETE("/item/:itemId", d.CartHandler.RemoveItem)

	e.POST("/checkout", d.CheckoutHandler.Checkout, authMW.RequireAuth)

	addresses := e.Group("/addresses", authMW.RequireAuth)
	addresses.GET("", d.AddressHandler.List)
	addresses.GET("/:id", d.AddressHandler.Get)
	addresses.POST("", d.AddressHandler.Create)
	addresses.PUT("/:id", d.AddressHandler.Update)
	addresses.DELETE("/:id", d.AddressHandler.Remove)

	orders := e.Group("/orders", authMW.RequireAuth)
	orders.GET("", d.OrderHandler.List)
	orders.GET("/:id", d.OrderHandler.Get)
	orders.POST("/:id/cancel", d.OrderHandler.Cancel)

	admin := e.Group("/admin", authMW.RequireAdmin)
	admin.GET("/orders", d.OrderHandler.ListAll)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)
}
