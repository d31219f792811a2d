package medicalfile

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthtech/hms/internal/platform/auth"
	"github.com/healthtech/hms/internal/platform/blobstore"
)

var ErrNotFound = errors.New("medical file not found")

var validFileTypes = map[string]bool{
	TypeLabResult:    true,
	TypeImaging:      true,
	TypePrescription: true,
	TypeReport:       true,
	TypeOther:        true,
}

type Service struct {
	repo  MedicalFileRepository
	blobs blobstore.Store
	log   zerolog.Logger
}

func NewService(repo MedicalFileRepository, blobs blobstore.Store, log zerolog.Logger) *Service {
	return &Service{repo: repo, blobs: blobs, log: log}
}

// Upload stores the document content and its metadata. UploadedBy is always
// the caller; any value the client supplied is discarded.
func (s *Service) Upload(ctx context.Context, caller auth.Identity, f *MedicalFile, filename string, content io.Reader) error {
	if f.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if f.FileType == "" {
		f.FileType = TypeOther
	}
	if !validFileTypes[f.FileType] {
		return fmt.Errorf("invalid file_type: %s", f.FileType)
	}
	if filename == "" {
		return fmt.Errorf("file is required")
	}

	uploadedBy := caller.UserID
	f.UploadedBy = &uploadedBy

	key, err := s.blobs.Save(ctx, filename, content)
	if err != nil {
		return fmt.Errorf("store file: %w", err)
	}
	f.FileKey = key

	if err := s.repo.Create(ctx, f); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.log.Error().Err(delErr).Str("key", key).Msg("failed to clean up orphaned blob")
		}
		return err
	}
	return nil
}

// Open returns the stored content of a file together with its metadata.
func (s *Service) Open(ctx context.Context, id uuid.UUID) (*MedicalFile, io.ReadCloser, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(ctx, f.FileKey)
	if err != nil {
		return nil, nil, fmt.Errorf("open blob %s: %w", f.FileKey, err)
	}
	return f, rc, nil
}

func (s *Service) GetFile(ctx context.Context, id uuid.UUID) (*MedicalFile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateFile(ctx context.Context, f *MedicalFile) error {
	if !validFileTypes[f.FileType] {
		return fmt.Errorf("invalid file_type: %s", f.FileType)
	}
	return s.repo.Update(ctx, f)
}

// DeleteFile removes the metadata row first; the blob is cleaned up best
// effort so a storage hiccup cannot resurrect a deleted record.
func (s *Service) DeleteFile(ctx context.Context, id uuid.UUID) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, f.FileKey); err != nil {
		s.log.Error().Err(err).Str("key", f.FileKey).Msg("failed to delete blob")
	}
	return nil
}

func (s *Service) ListFiles(ctx context.Context, params map[string]string, limit, offset int) ([]*MedicalFile, int, error) {
	return s.repo.List(ctx, params, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalFile, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) ListByClinicalRecord(ctx context.Context, recordID uuid.UUID) ([]*MedicalFile, error) {
	return s.repo.ListByClinicalRecord(ctx, recordID)
}
