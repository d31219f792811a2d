package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/healthtech/hms/internal/platform/policy"
)

// AppointmentRepository folds the caller's scope into every read and write,
// so a row outside the scope behaves exactly like a row that does not exist.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID, scope policy.Scope) (*Appointment, error)
	Update(ctx context.Context, a *Appointment, scope policy.Scope) error
	Delete(ctx context.Context, id uuid.UUID, scope policy.Scope) error
	List(ctx context.Context, scope policy.Scope, params map[string]string, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, scope policy.Scope) ([]*Appointment, error)
}
