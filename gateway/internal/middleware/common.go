package middleware

import (
	"log/slog"

	loggingmw "github.com/Skotchmaster/cosmetics_shop/pkg/middleware/logging"
	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
)

func Common(logger *slog.Logger) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		loggingmw.RequestLogger(logger, loggingmw.Quiet("/health/live", "/health/ready")),
		ecM.Secure(),
	}
}
