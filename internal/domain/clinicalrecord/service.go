package clinicalrecord

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthtech/hms/internal/domain/medicalfile"
	"github.com/healthtech/hms/internal/platform/policy"
)

var (
	ErrNotFound             = errors.New("clinical record not found")
	ErrDuplicateAppointment = errors.New("appointment already has a clinical record")
)

// FileSource supplies the nested file listings on record responses.
type FileSource interface {
	ListByClinicalRecord(ctx context.Context, recordID uuid.UUID) ([]*medicalfile.MedicalFile, error)
}

type Service struct {
	repo  ClinicalRecordRepository
	files FileSource
}

func NewService(repo ClinicalRecordRepository, files FileSource) *Service {
	return &Service{repo: repo, files: files}
}

func validate(cr *ClinicalRecord) error {
	if cr.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if cr.Diagnosis == "" {
		return fmt.Errorf("diagnosis is required")
	}
	if cr.Notes == "" {
		return fmt.Errorf("notes is required")
	}
	return nil
}

func (s *Service) attachFiles(ctx context.Context, cr *ClinicalRecord) error {
	files, err := s.files.ListByClinicalRecord(ctx, cr.ID)
	if err != nil {
		return err
	}
	if files == nil {
		files = []*medicalfile.MedicalFile{}
	}
	cr.Files = files
	return nil
}

func (s *Service) CreateRecord(ctx context.Context, cr *ClinicalRecord) error {
	if err := validate(cr); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, cr); err != nil {
		return err
	}
	cr.Files = []*medicalfile.MedicalFile{}
	return nil
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID, scope policy.Scope) (*ClinicalRecord, error) {
	cr, err := s.repo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	if err := s.attachFiles(ctx, cr); err != nil {
		return nil, err
	}
	return cr, nil
}

func (s *Service) UpdateRecord(ctx context.Context, cr *ClinicalRecord, scope policy.Scope) error {
	if err := validate(cr); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, cr, scope); err != nil {
		return err
	}
	return s.attachFiles(ctx, cr)
}

func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID, scope policy.Scope) error {
	return s.repo.Delete(ctx, id, scope)
}

func (s *Service) ListRecords(ctx context.Context, scope policy.Scope, params map[string]string, limit, offset int) ([]*ClinicalRecord, int, error) {
	items, total, err := s.repo.List(ctx, scope, params, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, cr := range items {
		if err := s.attachFiles(ctx, cr); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, scope policy.Scope) ([]*ClinicalRecord, error) {
	items, err := s.repo.ListByPatient(ctx, patientID, scope)
	if err != nil {
		return nil, err
	}
	for _, cr := range items {
		if err := s.attachFiles(ctx, cr); err != nil {
			return nil, err
		}
	}
	return items, nil
}
