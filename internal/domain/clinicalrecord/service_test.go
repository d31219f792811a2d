package clinicalrecord

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/healthtech/hms/internal/domain/medicalfile"
	"github.com/healthtech/hms/internal/platform/policy"
)

type mockRecordRepo struct {
	records map[uuid.UUID]*ClinicalRecord
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: make(map[uuid.UUID]*ClinicalRecord)}
}

func (m *mockRecordRepo) inScope(cr *ClinicalRecord, scope policy.Scope) bool {
	return scope.Allows(cr.DoctorID)
}

func (m *mockRecordRepo) Create(_ context.Context, cr *ClinicalRecord) error {
	for _, existing := range m.records {
		if cr.AppointmentID != nil && existing.AppointmentID != nil &&
			*cr.AppointmentID == *existing.AppointmentID {
			return ErrDuplicateAppointment
		}
	}
	cr.ID = uuid.New()
	cr.CreatedAt = time.Now()
	cr.UpdatedAt = time.Now()
	m.records[cr.ID] = cr
	return nil
}

func (m *mockRecordRepo) GetByID(_ context.Context, id uuid.UUID, scope policy.Scope) (*ClinicalRecord, error) {
	cr, ok := m.records[id]
	if !ok || !m.inScope(cr, scope) {
		return nil, ErrNotFound
	}
	return cr, nil
}

func (m *mockRecordRepo) Update(_ context.Context, cr *ClinicalRecord, scope policy.Scope) error {
	existing, ok := m.records[cr.ID]
	if !ok || !m.inScope(existing, scope) {
		return ErrNotFound
	}
	m.records[cr.ID] = cr
	return nil
}

func (m *mockRecordRepo) Delete(_ context.Context, id uuid.UUID, scope policy.Scope) error {
	cr, ok := m.records[id]
	if !ok || !m.inScope(cr, scope) {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockRecordRepo) List(_ context.Context, scope policy.Scope, params map[string]string, limit, offset int) ([]*ClinicalRecord, int, error) {
	var result []*ClinicalRecord
	for _, cr := range m.records {
		if !m.inScope(cr, scope) {
			continue
		}
		if v, ok := params["patient"]; ok && cr.PatientID.String() != v {
			continue
		}
		result = append(result, cr)
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

func (m *mockRecordRepo) ListByPatient(_ context.Context, patientID uuid.UUID, scope policy.Scope) ([]*ClinicalRecord, error) {
	var result []*ClinicalRecord
	for _, cr := range m.records {
		if cr.PatientID == patientID && m.inScope(cr, scope) {
			result = append(result, cr)
		}
	}
	return result, nil
}

type mockFileSource struct {
	files map[uuid.UUID][]*medicalfile.MedicalFile
}

func (m *mockFileSource) ListByClinicalRecord(_ context.Context, recordID uuid.UUID) ([]*medicalfile.MedicalFile, error) {
	return m.files[recordID], nil
}

func newTestService() (*Service, *mockRecordRepo, *mockFileSource) {
	repo := newMockRecordRepo()
	files := &mockFileSource{files: make(map[uuid.UUID][]*medicalfile.MedicalFile)}
	return NewService(repo, files), repo, files
}

func doctorScope(doctorID uuid.UUID) policy.Scope {
	return policy.ScopeFor(policy.Identity{UserID: doctorID, Role: policy.RoleDoctor}, policy.ResourceClinicalRecord)
}

func adminScope() policy.Scope {
	return policy.ScopeFor(policy.Identity{UserID: uuid.New(), Role: policy.RoleAdmin}, policy.ResourceClinicalRecord)
}

func seedRecord(t *testing.T, svc *Service, patientID uuid.UUID, doctorID *uuid.UUID) *ClinicalRecord {
	t.Helper()
	cr := &ClinicalRecord{
		PatientID: patientID,
		DoctorID:  doctorID,
		Diagnosis: "seasonal allergies",
		Notes:     "prescribed antihistamines",
	}
	if err := svc.CreateRecord(context.Background(), cr); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return cr
}

func TestCreateRecord_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	if err := svc.CreateRecord(context.Background(), &ClinicalRecord{Diagnosis: "x", Notes: "y"}); err == nil {
		t.Error("missing patient_id should be rejected")
	}
	if err := svc.CreateRecord(context.Background(), &ClinicalRecord{PatientID: uuid.New(), Notes: "y"}); err == nil {
		t.Error("missing diagnosis should be rejected")
	}
	if err := svc.CreateRecord(context.Background(), &ClinicalRecord{PatientID: uuid.New(), Diagnosis: "x"}); err == nil {
		t.Error("missing notes should be rejected")
	}
}

func TestCreateRecord_OneRecordPerAppointment(t *testing.T) {
	svc, _, _ := newTestService()
	apptID := uuid.New()

	first := &ClinicalRecord{PatientID: uuid.New(), AppointmentID: &apptID, Diagnosis: "x", Notes: "y"}
	if err := svc.CreateRecord(context.Background(), first); err != nil {
		t.Fatalf("create: %v", err)
	}

	second := &ClinicalRecord{PatientID: uuid.New(), AppointmentID: &apptID, Diagnosis: "x", Notes: "y"}
	if err := svc.CreateRecord(context.Background(), second); err != ErrDuplicateAppointment {
		t.Errorf("expected ErrDuplicateAppointment, got %v", err)
	}
}

func TestGetRecord_NestsFiles(t *testing.T) {
	svc, _, files := newTestService()

	doctorID := uuid.New()
	cr := seedRecord(t, svc, uuid.New(), &doctorID)
	files.files[cr.ID] = []*medicalfile.MedicalFile{
		{ID: uuid.New(), PatientID: cr.PatientID, FileType: medicalfile.TypeLabResult},
	}

	got, err := svc.GetRecord(context.Background(), cr.ID, adminScope())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Files) != 1 {
		t.Errorf("expected 1 nested file, got %d", len(got.Files))
	}
}

func TestGetRecord_EmptyFilesIsList(t *testing.T) {
	svc, _, _ := newTestService()
	doctorID := uuid.New()
	cr := seedRecord(t, svc, uuid.New(), &doctorID)

	got, err := svc.GetRecord(context.Background(), cr.ID, adminScope())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Files == nil {
		t.Error("files should serialize as an empty list, not null")
	}
}

func TestListRecords_DoctorScoping(t *testing.T) {
	svc, _, _ := newTestService()

	doctorA := uuid.New()
	doctorB := uuid.New()
	patient := uuid.New()

	seedRecord(t, svc, patient, &doctorA)
	seedRecord(t, svc, patient, &doctorB)
	seedRecord(t, svc, patient, nil) // unattributed record

	_, totalA, err := svc.ListRecords(context.Background(), doctorScope(doctorA), nil, 20, 0)
	if err != nil {
		t.Fatalf("list as doctor A: %v", err)
	}
	if totalA != 1 {
		t.Errorf("doctor A should see only own records, got %d", totalA)
	}

	_, totalAdmin, err := svc.ListRecords(context.Background(), adminScope(), nil, 20, 0)
	if err != nil {
		t.Fatalf("list as admin: %v", err)
	}
	if totalAdmin != 3 {
		t.Errorf("admin should see all records including unattributed, got %d", totalAdmin)
	}
}

func TestGetRecord_OutOfScopeLooksAbsent(t *testing.T) {
	svc, _, _ := newTestService()

	doctorA := uuid.New()
	doctorB := uuid.New()
	cr := seedRecord(t, svc, uuid.New(), &doctorB)

	_, errOutOfScope := svc.GetRecord(context.Background(), cr.ID, doctorScope(doctorA))
	_, errAbsent := svc.GetRecord(context.Background(), uuid.New(), doctorScope(doctorA))
	if errOutOfScope == nil {
		t.Fatal("doctor A should not see doctor B's record")
	}
	if errOutOfScope != errAbsent {
		t.Errorf("out-of-scope and absent ids must yield the same error, got %v vs %v", errOutOfScope, errAbsent)
	}
}

func TestListRecords_PatientFilterNarrowsScope(t *testing.T) {
	svc, _, _ := newTestService()

	doctorA := uuid.New()
	patientX := uuid.New()
	patientY := uuid.New()

	seedRecord(t, svc, patientX, &doctorA)
	seedRecord(t, svc, patientY, &doctorA)
	otherDoctor := uuid.New()
	seedRecord(t, svc, patientX, &otherDoctor)

	items, total, err := svc.ListRecords(context.Background(), doctorScope(doctorA),
		map[string]string{"patient": patientX.String()}, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 record (doctor A AND patient X), got %d", total)
	}
	if items[0].PatientID != patientX || items[0].DoctorID == nil || *items[0].DoctorID != doctorA {
		t.Error("result should satisfy both the scope and the filter")
	}
}
