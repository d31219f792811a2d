package laborder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("lab order not found")

var validStatuses = map[string]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

var validPriorities = map[string]bool{
	PriorityNormal: true,
	PriorityUrgent: true,
}

type Service struct {
	repo LabOrderRepository
	now  func() time.Time
}

func NewService(repo LabOrderRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func validate(o *LabOrder) error {
	if o.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if o.TestName == "" {
		return fmt.Errorf("test_name is required")
	}
	if !validStatuses[o.Status] {
		return fmt.Errorf("invalid status: %s", o.Status)
	}
	if !validPriorities[o.Priority] {
		return fmt.Errorf("invalid priority: %s", o.Priority)
	}
	return nil
}

func (s *Service) CreateLabOrder(ctx context.Context, o *LabOrder) error {
	if o.Status == "" {
		o.Status = StatusPending
	}
	if o.Priority == "" {
		o.Priority = PriorityNormal
	}
	if err := validate(o); err != nil {
		return err
	}
	return s.repo.Create(ctx, o)
}

func (s *Service) GetLabOrder(ctx context.Context, id uuid.UUID) (*LabOrder, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateLabOrder stamps completed_at the first time an order reaches
// COMPLETED and clears it if the order is reopened.
func (s *Service) UpdateLabOrder(ctx context.Context, o *LabOrder) error {
	if err := validate(o); err != nil {
		return err
	}
	if o.Status == StatusCompleted && o.CompletedAt == nil {
		completed := s.now()
		o.CompletedAt = &completed
	}
	if o.Status != StatusCompleted {
		o.CompletedAt = nil
	}
	return s.repo.Update(ctx, o)
}

func (s *Service) DeleteLabOrder(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListLabOrders(ctx context.Context, params map[string]string, limit, offset int) ([]*LabOrder, int, error) {
	return s.repo.List(ctx, params, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*LabOrder, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
