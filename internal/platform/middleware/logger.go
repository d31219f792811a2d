package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/healthtech/hms/internal/platform/auth"
)

// Logger emits one structured line per request, keyed by the same request_id
// the audit trail records. The caller's username and role are attached once
// the JWT middleware has resolved them, so log lines and audit entries for a
// request can be correlated by either id or user.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			req := c.Request()
			status := c.Response().Status
			if httpErr, ok := err.(*echo.HTTPError); ok {
				// The error handler writes the response after this
				// middleware returns.
				status = httpErr.Code
			}

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}
			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())
			if id, ok := auth.IdentityFromContext(req.Context()); ok {
				evt = evt.Str("username", id.Username).Str("role", id.Role)
			}
			evt.Msg("request")

			return err
		}
	}
}
