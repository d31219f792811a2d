package middleware

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/healthtech/hms/internal/platform/auth"
)

// AuditEntry captures who performed which request, from where, and how it
// ended. One entry is recorded per authenticated API request.
type AuditEntry struct {
	UserID     uuid.UUID
	Username   string
	Role       string
	Action     string // HTTP method
	Path       string
	IPAddress  string
	Details    string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

// AuditRecorder persists audit entries. The middleware depends on this
// interface rather than the audit domain service so tests can substitute a
// mock.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(ctx context.Context, entry AuditEntry) error

func (f AuditRecorderFunc) Record(ctx context.Context, entry AuditEntry) error {
	return f(ctx, entry)
}

// Audit returns middleware that records one audit entry per authenticated
// request under /api/v1/, excluding the token endpoints. The handler runs
// first so the entry carries the final response status; a recorder failure
// is logged and never alters the response.
func Audit(logger zerolog.Logger, recorder AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if !isAuditablePath(path) {
				return next(c)
			}

			err := next(c)

			id, ok := auth.IdentityFromContext(c.Request().Context())
			if !ok {
				// Anonymous requests (rejected before auth completed) are
				// not attributable and are skipped.
				return err
			}

			status := c.Response().Status
			if httpErr, isHTTP := err.(*echo.HTTPError); isHTTP {
				status = httpErr.Code
			}

			entry := AuditEntry{
				UserID:     id.UserID,
				Username:   id.Username,
				Role:       id.Role,
				Action:     c.Request().Method,
				Path:       path,
				IPAddress:  c.RealIP(),
				Details:    "status: " + strconv.Itoa(status),
				StatusCode: status,
				Timestamp:  time.Now().UTC(),
			}
			if rid, okRID := c.Get("request_id").(string); okRID {
				entry.RequestID = rid
			}

			if recErr := recorder.Record(c.Request().Context(), entry); recErr != nil {
				logger.Error().Err(recErr).
					Str("request_id", entry.RequestID).
					Str("path", entry.Path).
					Msg("failed to record audit entry")
			}

			return err
		}
	}
}

// isAuditablePath returns true for API routes other than the token endpoints.
func isAuditablePath(path string) bool {
	if !strings.HasPrefix(path, "/api/v1/") {
		return false
	}
	return !strings.HasPrefix(path, "/api/v1/auth/")
}
