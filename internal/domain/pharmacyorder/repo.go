package pharmacyorder

import (
	"context"

	"github.com/google/uuid"
)

type PharmacyOrderRepository interface {
	Create(ctx context.Context, o *PharmacyOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*PharmacyOrder, error)
	Update(ctx context.Context, o *PharmacyOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*PharmacyOrder, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*PharmacyOrder, error)
}
