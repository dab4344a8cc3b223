package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/cosmetics_shop/pkg/logging"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/service"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/transport"
	"github.com/labstack/echo/v4"
)

type AddressHTTP struct {
	Svc *service.AddressService
}

func (h *AddressHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "list.addresses")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("list_addresses_error", "status", 401, "error", err)
		return unauthorized()
	}

	list, err := h.Svc.List(ctx, userID)
	if err != nil {
		return fail(l, "list_addresses_error", err, http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, transport.Addresses(list))
}

func (h *AddressHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get.address")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("get_address_error", "status", 401, "error", err)
		return unauthorized()
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	address, err := h.Svc.Get(ctx, userID, id)
	if err != nil {
		return fail(l, "get_address_error", err, http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, transport.Address(*address))
}

func (h *AddressHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create.address")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("create_address_error", "status", 401, "error", err)
		return unauthorized()
	}

	var req transport.AddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "create_address_error", err)
	}

	address := req.Model()
	address.UserID = userID
	if err := h.Svc.Create(ctx, &address); err != nil {
		return fail(l, "create_address_error", err, http.StatusNotFound)
	}

	l.Info("address_created", "address_id", address.ID, "is_main", address.IsMain)
	return c.JSON(http.StatusCreated, transport.Address(address))
}

func (h *AddressHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update.address")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("update_address_error", "status", 401, "error", err)
		return unauthorized()
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req transport.AddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(l, "update_address_error", err)
	}

	address := req.Model()
	address.ID = id
	address.UserID = userID
	if err := h.Svc.Update(ctx, &address); err != nil {
		return fail(l, "update_address_error", err, http.StatusNotFound)
	}

	return c.JSON(http.StatusOK, transport.Address(address))
}

func (h *AddressHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "remove.address")

	userID, err := GetID(c)
	if err != nil {
		l.Warn("remove_address_error", "status", 401, "error", err)
		return unauthorized()
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.Remove(ctx, userID, id); err != nil {
		return fail(l, "remove_address_error", err, http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "address removed"})
}
