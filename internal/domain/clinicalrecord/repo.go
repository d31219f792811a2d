package clinicalrecord

import (
	"context"

	"github.com/google/uuid"

	"github.com/healthtech/hms/internal/platform/policy"
)

type ClinicalRecordRepository interface {
	Create(ctx context.Context, r *ClinicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID, scope policy.Scope) (*ClinicalRecord, error)
	Update(ctx context.Context, r *ClinicalRecord, scope policy.Scope) error
	Delete(ctx context.Context, id uuid.UUID, scope policy.Scope) error
	List(ctx context.Context, scope policy.Scope, params map[string]string, limit, offset int) ([]*ClinicalRecord, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, scope policy.Scope) ([]*ClinicalRecord, error)
}
