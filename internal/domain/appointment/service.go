package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthtech/hms/internal/platform/policy"
)

var ErrNotFound = errors.New("appointment not found")

var validStatuses = map[string]bool{
	StatusScheduled:  true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
	StatusNoShow:     true,
}

type Service struct {
	repo AppointmentRepository
}

func NewService(repo AppointmentRepository) *Service {
	return &Service{repo: repo}
}

func validate(a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if a.DateTime.IsZero() {
		return fmt.Errorf("date_time is required")
	}
	if a.Reason == "" {
		return fmt.Errorf("reason is required")
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("invalid status: %s", a.Status)
	}
	return nil
}

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if err := validate(a); err != nil {
		return err
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID, scope policy.Scope) (*Appointment, error) {
	return s.repo.GetByID(ctx, id, scope)
}

func (s *Service) UpdateAppointment(ctx context.Context, a *Appointment, scope policy.Scope) error {
	if err := validate(a); err != nil {
		return err
	}
	return s.repo.Update(ctx, a, scope)
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID, scope policy.Scope) error {
	return s.repo.Delete(ctx, id, scope)
}

func (s *Service) ListAppointments(ctx context.Context, scope policy.Scope, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, scope, params, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, scope policy.Scope) ([]*Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID, scope)
}
