package patient

import (
	"context"

	"github.com/google/uuid"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns patients matching the search term, ordered by the
	// given whitelisted ORDER BY fragment.
	List(ctx context.Context, search, orderBy string, limit, offset int) ([]*Patient, int, error)
}
