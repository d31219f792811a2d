package laborder

import (
	"context"

	"github.com/google/uuid"
)

type LabOrderRepository interface {
	Create(ctx context.Context, o *LabOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*LabOrder, error)
	Update(ctx context.Context, o *LabOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*LabOrder, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*LabOrder, error)
}
