package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/cosmetics_shop/pkg/logging"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/service"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/transport"
	"github.com/labstack/echo/v4"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get.cart")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("get_cart_error", "status", 401, "error", err)
		return unauthorized()
	}

	view, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return fail(l, "get_cart_error", err, http.StatusNotFound)
	}

	return c.JSON(http.StatusOK, transport.Cart(view))
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "add.cart.item")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("add_cart_item_error", "status", 401, "error", err)
		return unauthorized()
	}

	var req transport.AddToCartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "add_cart_item_error", err)
	}

	item, err := h.Svc.AddItem(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "add_cart_item_error", err, http.StatusBadRequest)
	}

	l.Info("cart_item_added", "item_id", item.ID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "item added to cart"})
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update.cart.item")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("update_cart_item_error", "status", 401, "error", err)
		return unauthorized()
	}

	itemID, err := parseID(c, "itemId")
	if err != nil {
		return err
	}

	var req transport.UpdateCartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "update_cart_item_error", err)
	}

	if err := h.Svc.UpdateQuantity(ctx, userID, itemID, *req.Quantity); err != nil {
		return fail(l, "update_cart_item_error", err, http.StatusBadRequest)
	}

	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "cart item updated"})
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "remove.cart.item")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("remove_cart_item_error", "status", 401, "error", err)
		return unauthorized()
	}

	itemID, err := parseID(c, "itemId")
	if err != nil {
		return err
	}

	if err := h.Svc.RemoveItem(ctx, userID, itemID); err != nil {
		return fail(l, "remove_cart_item_error", err, http.StatusBadRequest)
	}

	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "cart item removed"})
}
