package audit

import (
	"context"

	"github.com/google/uuid"
)

// AuditLogRepository is intentionally append-only: entries can be inserted
// and read, never updated or deleted.
type AuditLogRepository interface {
	Insert(ctx context.Context, entry *AuditLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*AuditLog, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*AuditLog, int, error)
}
