package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/cosmetics_shop/pkg/logging"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/service"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/transport"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/util"
	"github.com/labstack/echo/v4"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get.product")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_error", err, http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, transport.Product(*p))
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "list.products")

	page, size := util.Page(c.QueryParam("page"), c.QueryParam("size"))
	res, err := h.Svc.ListProducts(ctx, page, size)
	if err != nil {
		return fail(l, "list_products_error", err, http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, transport.Products(res))
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search.products")

	page, size := util.Page(c.QueryParam("page"), c.QueryParam("size"))
	res, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(l, "search_products_error", err, http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, transport.Products(res))
}
