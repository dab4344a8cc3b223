package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func unauthorized() error {
	return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
}

// GetID reads the user id the auth middleware put on the context.
func GetID(c echo.Context) (uuid.UUID, error) {
	s, ok := c.Get("user_id").(string)
	if !ok || s == "" {
		return uuid.Nil, errors.New("unauthorized")
	}
	userID, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.New("unauthorized")
	}
	return userID, nil
}

func parseID(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(v), nil
}

// fail maps a service error to a response. notFound is the status used for
// missing resources on this route.
func fail(l *slog.Logger, event string, err error, notFound int) error {
	var svcErr *service.Error
	switch {
	case errors.As(err, &svcErr) && errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", notFound, "reason", svcErr.Msg)
		return echo.NewHTTPError(notFound, svcErr.Msg)
	case errors.As(err, &svcErr):
		l.Warn(event, "status", http.StatusBadRequest, "reason", svcErr.Msg)
		return echo.NewHTTPError(http.StatusBadRequest, svcErr.Msg)
	case errors.Is(err, service.ErrSearchUnavailable):
		l.Warn(event, "status", http.StatusServiceUnavailable, "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search unavailable")
	default:
		l.Error(event, "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func badRequest(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", err.Error())
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

var errIdempotencyKeyTooLong = errors.New("idempotency key must be at most 255 characters")
