package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/Skotchmaster/cosmetics_shop/gateway/internal/middleware"
	"github.com/Skotchmaster/cosmetics_shop/pkg/middleware/csrf"
	"github.com/Skotchmaster/cosmetics_shop/pkg/tokens"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	AuthURL string
	ShopURL string

	JWTSecret  []byte
	CSRFConfig csrf.Config
	Logger     *slog.Logger
}

func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, m := range middleware.Common(d.Logger) {
		e.Use(m)
	}
	e.Use(csrf.Middleware(d.CSRFConfig))

	auth, err := newBackend("auth", d.AuthURL, "/api/v1/auth")
	if err != nil {
		return err
	}
	authProxy := auth.Handle

	shop, err := newBackend("shop", d.ShopURL, "/api/v1")
	if err != nil {
		return err
	}
	shopProxy := shop.Handle

	e.Any("/api/v1/auth/*", authProxy)
	e.Match([]string{http.MethodGet}, "/api/v1/catalog/*", shopProxy)

	api := e.Group("/api/v1")
	api.Use(middleware.Middleware(d.JWTSecret))

	api.Any("/cart", shopProxy)
	api.Any("/cart/*", shopProxy)
	api.POST("/checkout", shopProxy)
	api.Any("/addresses", shopProxy)
	api.Any("/addresses/*", shopProxy)
	api.Any("/orders", shopProxy)
	api.Any("/orders/*", shopProxy)

	admin := api.Group("/admin", middleware.RequireRole([]string{tokens.RoleAdmin}))
	admin.Any("/*", shopProxy)

	return nil
}
