package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/cosmetics_shop/pkg/logging"
	authmw "github.com/Skotchmaster/cosmetics_shop/pkg/middleware/auth"
)

type options struct {
	quiet map[string]bool
}

type Option func(*options)

// Quiet logs successful requests to the given route paths at debug level.
// Meant for health checks and metric scrapes that would otherwise flood the log.
func Quiet(paths ...string) Option {
	return func(o *options) {
		for _, p := range paths {
			o.quiet[p] = true
		}
	}
}

// RequestLogger puts a request scoped logger into the request context and
// writes one line per request once the response status is known.
func RequestLogger(base *slog.Logger, opts ...Option) echo.MiddlewareFunc {
	o := options{quiet: map[string]bool{}}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()

			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = res.Header().Get(echo.HeaderXRequestID)
			}

			attrs := []any{
				"method", req.Method,
				"path", c.Path(),
				"url", req.URL.Path,
				"remote_ip", c.RealIP(),
			}
			if rid != "" {
				attrs = append(attrs, "request_id", rid)
				res.Header().Set(echo.HeaderXRequestID, rid)
			}
			l := base.With(attrs...)
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				// render now so the logged status is the one the client sees
				c.Error(err)
			}

			status := res.Status
			level := levelFor(status)
			if level == slog.LevelInfo && o.quiet[c.Path()] {
				level = slog.LevelDebug
			}

			fields := []any{"status", status, "duration_ms", time.Since(start).Milliseconds()}
			if uid, ok := c.Get(authmw.CtxUserID).(string); ok && uid != "" {
				fields = append(fields, "user_id", uid)
			}
			if err != nil {
				fields = append(fields, "error", err.Error())
			} else {
				fields = append(fields, "bytes", res.Size)
			}
			l.Log(c.Request().Context(), level, "request completed", fields...)
			return nil
		}
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
