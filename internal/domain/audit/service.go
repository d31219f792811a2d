package audit

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/healthtech/hms/internal/platform/middleware"
)

var ErrNotFound = errors.New("audit log not found")

type Service struct {
	repo AuditLogRepository
}

func NewService(repo AuditLogRepository) *Service {
	return &Service{repo: repo}
}

// Record persists one trail entry. It satisfies middleware.AuditRecorder so
// the service can be handed to the audit middleware directly.
func (s *Service) Record(ctx context.Context, e middleware.AuditEntry) error {
	userID := e.UserID
	return s.repo.Insert(ctx, &AuditLog{
		UserID:     &userID,
		Username:   e.Username,
		Role:       e.Role,
		Action:     e.Action,
		Path:       e.Path,
		IPAddress:  e.IPAddress,
		Details:    e.Details,
		RequestID:  e.RequestID,
		StatusCode: e.StatusCode,
		CreatedAt:  e.Timestamp,
	})
}

func (s *Service) GetAuditLog(ctx context.Context, id uuid.UUID) (*AuditLog, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) SearchAuditLogs(ctx context.Context, params map[string]string, limit, offset int) ([]*AuditLog, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}
