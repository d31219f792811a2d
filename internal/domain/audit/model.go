package audit

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is one append-only record of an authenticated API request.
// UserID is nullable so entries survive account deletion.
type AuditLog struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	UserID     *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Username   string     `db:"username" json:"username"`
	Role       string     `db:"role" json:"role"`
	Action     string     `db:"action" json:"action"`
	Path       string     `db:"path" json:"path"`
	IPAddress  string     `db:"ip_address" json:"ip_address"`
	Details    string     `db:"details" json:"details"`
	RequestID  string     `db:"request_id" json:"request_id"`
	StatusCode int        `db:"status_code" json:"status_code"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
