package pharmacyorder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("pharmacy order not found")

var validStatuses = map[string]bool{
	StatusPending:   true,
	StatusDispensed: true,
	StatusCancelled: true,
}

type Service struct {
	repo PharmacyOrderRepository
}

func NewService(repo PharmacyOrderRepository) *Service {
	return &Service{repo: repo}
}

func validate(o *PharmacyOrder) error {
	if o.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if o.MedicationID == uuid.Nil {
		return fmt.Errorf("medication_id is required")
	}
	if o.Dosage == "" {
		return fmt.Errorf("dosage is required")
	}
	if o.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if !validStatuses[o.Status] {
		return fmt.Errorf("invalid status: %s", o.Status)
	}
	return nil
}

func (s *Service) CreatePharmacyOrder(ctx context.Context, o *PharmacyOrder) error {
	if o.Status == "" {
		o.Status = StatusPending
	}
	if err := validate(o); err != nil {
		return err
	}
	return s.repo.Create(ctx, o)
}

func (s *Service) GetPharmacyOrder(ctx context.Context, id uuid.UUID) (*PharmacyOrder, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdatePharmacyOrder(ctx context.Context, o *PharmacyOrder) error {
	if err := validate(o); err != nil {
		return err
	}
	return s.repo.Update(ctx, o)
}

func (s *Service) DeletePharmacyOrder(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListPharmacyOrders(ctx context.Context, params map[string]string, limit, offset int) ([]*PharmacyOrder, int, error) {
	return s.repo.List(ctx, params, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*PharmacyOrder, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
