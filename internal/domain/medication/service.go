package medication

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("medication not found")

type Service struct {
	repo MedicationRepository
}

func NewService(repo MedicationRepository) *Service {
	return &Service{repo: repo}
}

func validate(m *Medication) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Category == "" {
		return fmt.Errorf("category is required")
	}
	if m.Stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}
	if m.UnitPrice < 0 {
		return fmt.Errorf("unit_price cannot be negative")
	}
	return nil
}

func (s *Service) CreateMedication(ctx context.Context, m *Medication) error {
	if err := validate(m); err != nil {
		return err
	}
	return s.repo.Create(ctx, m)
}

func (s *Service) GetMedication(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateMedication(ctx context.Context, m *Medication) error {
	if err := validate(m); err != nil {
		return err
	}
	return s.repo.Update(ctx, m)
}

func (s *Service) DeleteMedication(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) SearchMedications(ctx context.Context, params map[string]string, limit, offset int) ([]*Medication, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}
