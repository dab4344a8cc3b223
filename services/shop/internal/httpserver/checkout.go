package httpserver

import (
	"net/http"
	"strings"

	"github.com/Skotchmaster/cosmetics_shop/pkg/logging"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/service"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/transport"
	"github.com/labstack/echo/v4"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type CheckoutHTTP struct {
	Svc *service.CheckoutService
}

func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("checkout_error", "status", 401, "error", err)
		return unauthorized()
	}

	var req transport.CheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "checkout_error", err)
	}

	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if key == "" {
		key = strings.TrimSpace(req.IdempotencyKey)
	}
	if len(key) > 255 {
		return badRequest(l, "checkout_error", errIdempotencyKeyTooLong)
	}

	var intent service.Intent = service.FromCart{}
	if req.ProductID != nil {
		qty := 1
		if req.Quantity != nil {
			qty = *req.Quantity
		}
		intent = service.BuyNow{ProductID: *req.ProductID, Quantity: qty}
	}

	res, err := h.Svc.Checkout(ctx, service.CheckoutRequest{
		UserID:         userID,
		AddressID:      req.AddressID,
		Intent:         intent,
		IdempotencyKey: key,
	})
	if err != nil {
		return fail(l, "checkout_error", err, http.StatusBadRequest)
	}

	resp := transport.CheckoutResponse{
		Message:  "order placed",
		OrderID:  res.OrderID,
		Date:     res.CreatedAt,
		Total:    res.Total.InexactFloat64(),
		Replayed: res.Replayed,
	}
	if res.Replayed {
		resp.Message = "order already placed"
		return c.JSON(http.StatusOK, resp)
	}
	return c.JSON(http.StatusCreated, resp)
}
