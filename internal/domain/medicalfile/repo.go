package medicalfile

import (
	"context"

	"github.com/google/uuid"
)

type MedicalFileRepository interface {
	Create(ctx context.Context, f *MedicalFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalFile, error)
	Update(ctx context.Context, f *MedicalFile) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*MedicalFile, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalFile, error)
	ListByClinicalRecord(ctx context.Context, recordID uuid.UUID) ([]*MedicalFile, error)
}
