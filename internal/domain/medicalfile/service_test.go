package medicalfile

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/healthtech/hms/internal/platform/auth"
	"github.com/healthtech/hms/internal/platform/blobstore"
	"github.com/healthtech/hms/internal/platform/policy"
)

type mockFileRepo struct {
	files map[uuid.UUID]*MedicalFile
}

func newMockFileRepo() *mockFileRepo {
	return &mockFileRepo{files: make(map[uuid.UUID]*MedicalFile)}
}

func (m *mockFileRepo) Create(_ context.Context, f *MedicalFile) error {
	f.ID = uuid.New()
	f.CreatedAt = time.Now()
	m.files[f.ID] = f
	return nil
}

func (m *mockFileRepo) GetByID(_ context.Context, id uuid.UUID) (*MedicalFile, error) {
	f, ok := m.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f, nil
}

func (m *mockFileRepo) Update(_ context.Context, f *MedicalFile) error {
	if _, ok := m.files[f.ID]; !ok {
		return ErrNotFound
	}
	m.files[f.ID] = f
	return nil
}

func (m *mockFileRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.files[id]; !ok {
		return ErrNotFound
	}
	delete(m.files, id)
	return nil
}

func (m *mockFileRepo) List(_ context.Context, params map[string]string, limit, offset int) ([]*MedicalFile, int, error) {
	var result []*MedicalFile
	for _, f := range m.files {
		if v, ok := params["patient"]; ok && f.PatientID.String() != v {
			continue
		}
		if v, ok := params["file_type"]; ok && f.FileType != v {
			continue
		}
		result = append(result, f)
	}
	total := len(result)
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockFileRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*MedicalFile, error) {
	var result []*MedicalFile
	for _, f := range m.files {
		if f.PatientID == patientID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *mockFileRepo) ListByClinicalRecord(_ context.Context, recordID uuid.UUID) ([]*MedicalFile, error) {
	var result []*MedicalFile
	for _, f := range m.files {
		if f.ClinicalRecordID != nil && *f.ClinicalRecordID == recordID {
			result = append(result, f)
		}
	}
	return result, nil
}

func newTestService() (*Service, *mockFileRepo, *blobstore.MemStore) {
	repo := newMockFileRepo()
	blobs := blobstore.NewMemStore()
	return NewService(repo, blobs, zerolog.Nop()), repo, blobs
}

func nurseCaller() auth.Identity {
	return auth.Identity{UserID: uuid.New(), Username: "nurse.kim", Role: policy.RoleNurse}
}

// The uploader recorded on a file is the authenticated caller, regardless of
// anything the client put in the form.
func TestUpload_StampsUploaderFromCaller(t *testing.T) {
	svc, repo, _ := newTestService()

	caller := nurseCaller()
	spoofed := uuid.New()
	f := &MedicalFile{
		PatientID:  uuid.New(),
		FileType:   TypeLabResult,
		UploadedBy: &spoofed,
	}
	err := svc.Upload(context.Background(), caller, f, "cbc_results.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	stored := repo.files[f.ID]
	if stored.UploadedBy == nil || *stored.UploadedBy != caller.UserID {
		t.Error("uploaded_by must be the caller, not the client-supplied value")
	}
}

func TestUpload_StoresContent(t *testing.T) {
	svc, _, blobs := newTestService()

	f := &MedicalFile{PatientID: uuid.New(), FileType: TypeImaging}
	err := svc.Upload(context.Background(), nurseCaller(), f, "xray.png", strings.NewReader("image bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if f.FileKey == "" {
		t.Fatal("expected a blob key")
	}

	rc, err := blobs.Open(context.Background(), f.FileKey)
	if err != nil {
		t.Fatalf("open blob: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "image bytes" {
		t.Errorf("stored content mismatch: %q", data)
	}
}

func TestUpload_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	caller := nurseCaller()

	noPatient := &MedicalFile{FileType: TypeReport}
	if err := svc.Upload(context.Background(), caller, noPatient, "r.pdf", strings.NewReader("x")); err == nil {
		t.Error("missing patient_id should be rejected")
	}

	badType := &MedicalFile{PatientID: uuid.New(), FileType: "SELFIE"}
	if err := svc.Upload(context.Background(), caller, badType, "s.jpg", strings.NewReader("x")); err == nil {
		t.Error("unknown file_type should be rejected")
	}

	defaulted := &MedicalFile{PatientID: uuid.New()}
	if err := svc.Upload(context.Background(), caller, defaulted, "n.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("upload without file_type: %v", err)
	}
	if defaulted.FileType != TypeOther {
		t.Errorf("expected default file_type OTHER, got %s", defaulted.FileType)
	}
}

func TestDeleteFile_RemovesBlob(t *testing.T) {
	svc, _, blobs := newTestService()

	f := &MedicalFile{PatientID: uuid.New(), FileType: TypeOther}
	if err := svc.Upload(context.Background(), nurseCaller(), f, "note.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := svc.DeleteFile(context.Background(), f.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if blobs.Len() != 0 {
		t.Error("blob should be removed with the record")
	}
	if _, err := svc.GetFile(context.Background(), f.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListFiles_PatientFilter(t *testing.T) {
	svc, _, _ := newTestService()

	patientA := uuid.New()
	patientB := uuid.New()
	for _, pid := range []uuid.UUID{patientA, patientA, patientB} {
		f := &MedicalFile{PatientID: pid, FileType: TypeReport}
		if err := svc.Upload(context.Background(), nurseCaller(), f, "r.pdf", strings.NewReader("x")); err != nil {
			t.Fatalf("upload: %v", err)
		}
	}

	_, total, err := svc.ListFiles(context.Background(), map[string]string{"patient": patientA.String()}, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 files for patient A, got %d", total)
	}
}
