package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/cosmetics_shop/pkg/logging"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/models"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/service"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/transport"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/util"
	"github.com/labstack/echo/v4"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "list.orders")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("list_orders_error", "status", 401, "error", err)
		return unauthorized()
	}

	page, size := util.Page(c.QueryParam("page"), c.QueryParam("size"))
	res, err := h.Svc.List(ctx, userID, page, size)
	if err != nil {
		return fail(l, "list_orders_error", err, http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, transport.Orders(res))
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get.order")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("get_order_error", "status", 401, "error", err)
		return unauthorized()
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Svc.Get(ctx, userID, id)
	if err != nil {
		return fail(l, "get_order_error", err, http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, transport.Order(*order))
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cancel.order")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("cancel_order_error", "status", 401, "error", err)
		return unauthorized()
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Svc.Cancel(ctx, userID, id)
	if err != nil {
		return fail(l, "cancel_order_error", err, http.StatusNotFound)
	}

	l.Info("order_cancelled", "order_id", order.ID)
	return c.JSON(http.StatusOK, transport.Order(*order))
}

func (h *OrderHTTP) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list.orders")

	page, size := util.Page(c.QueryParam("page"), c.QueryParam("size"))
	res, err := h.Svc.ListAll(ctx, page, size)
	if err != nil {
		return fail(l, "admin_list_orders_error", err, http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, transport.Orders(res))
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update.order.status")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req transport.UpdateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "update_order_status_error", err)
	}

	order, err := h.Svc.UpdateStatus(ctx, id, models.OrderStatus(req.Status))
	if err != nil {
		return fail(l, "update_order_status_error", err, http.StatusNotFound)
	}

	l.Info("order_status_updated", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, transport.Order(*order))
}
