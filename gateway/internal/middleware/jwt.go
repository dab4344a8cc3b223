package middleware

import (
	"errors"
	"net/http"
	"slices"

	auth "github.com/Skotchmaster/cosmetics_shop/pkg/middleware/auth"
	"github.com/Skotchmaster/cosmetics_shop/pkg/tokens"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Middleware rejects requests without a usable access token before they
// reach an upstream. An expired token that comes with a refresh cookie is
// passed through so the upstream can rotate it.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			accessCookie, err := c.Cookie(tokens.AccessCookie)
			if err != nil || accessCookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			claims, err := tokens.AccessClaimsFromToken(accessCookie.Value, secret)
			if errors.Is(err, jwt.ErrTokenExpired) {
				if rc, rErr := c.Cookie(tokens.RefreshCookie); rErr == nil && rc.Value != "" {
					return next(c)
				}
			}
			if err != nil || claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			if claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
			}

			c.Set(auth.CtxUserID, claims.Subject)
			c.Set(auth.CtxRole, claims.Role)
			return next(c)
		}
	}
}

func RequireRole(required []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(auth.CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing role")
			}
			if !slices.Contains(required, role) {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights to see this page")
			}
			return next(c)
		}
	}
}
