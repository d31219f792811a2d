package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthtech/hms/internal/domain/appointment"
	"github.com/healthtech/hms/internal/domain/clinicalrecord"
	"github.com/healthtech/hms/internal/domain/laborder"
	"github.com/healthtech/hms/internal/domain/medicalfile"
	"github.com/healthtech/hms/internal/domain/pharmacyorder"
	"github.com/healthtech/hms/internal/platform/policy"
)

var (
	ErrNotFound     = errors.New("patient not found")
	ErrDuplicateSSN = errors.New("a patient with this ssn already exists")
)

var validGenders = map[string]bool{
	GenderMale:   true,
	GenderFemale: true,
	GenderOther:  true,
}

var validBloodTypes = map[string]bool{
	"A+": true, "A-": true,
	"B+": true, "B-": true,
	"AB+": true, "AB-": true,
	"O+": true, "O-": true,
}

// orderings whitelists the client-facing ordering values and maps each
// to the ORDER BY fragment the repository interpolates.
var orderings = map[string]string{
	"first_name":  "first_name ASC",
	"-first_name": "first_name DESC",
	"last_name":   "last_name ASC",
	"-last_name":  "last_name DESC",
	"created_at":  "created_at ASC",
	"-created_at": "created_at DESC",
}

const defaultOrdering = "created_at DESC"

// AppointmentSource and the sibling interfaces below let the profile
// assembly pull each patient-linked collection without this package
// depending on concrete services.
type AppointmentSource interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID, scope policy.Scope) ([]*appointment.Appointment, error)
}

type ClinicalRecordSource interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID, scope policy.Scope) ([]*clinicalrecord.ClinicalRecord, error)
}

type LabOrderSource interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*laborder.LabOrder, error)
}

type MedicalFileSource interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*medicalfile.MedicalFile, error)
}

type PharmacyOrderSource interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*pharmacyorder.PharmacyOrder, error)
}

type ProfileSources struct {
	Appointments   AppointmentSource
	Records        ClinicalRecordSource
	LabOrders      LabOrderSource
	Files          MedicalFileSource
	PharmacyOrders PharmacyOrderSource
}

// FullProfile bundles a patient with every collection linked to them.
// The embedded patient fields marshal inline.
type FullProfile struct {
	*Patient
	Appointments    []*appointment.Appointment       `json:"appointments"`
	ClinicalRecords []*clinicalrecord.ClinicalRecord `json:"clinical_records"`
	LabOrders       []*laborder.LabOrder             `json:"lab_orders"`
	MedicalFiles    []*medicalfile.MedicalFile       `json:"medical_files"`
	PharmacyOrders  []*pharmacyorder.PharmacyOrder   `json:"pharmacy_orders"`
}

type Service struct {
	repo    PatientRepository
	sources ProfileSources
}

func NewService(repo PatientRepository, sources ProfileSources) *Service {
	return &Service{repo: repo, sources: sources}
}

func validate(p *Patient) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if p.DateOfBirth.IsZero() {
		return fmt.Errorf("date_of_birth is required")
	}
	if p.SSN == "" {
		return fmt.Errorf("ssn is required")
	}
	if p.Address == "" {
		return fmt.Errorf("address is required")
	}
	if !validGenders[p.Gender] {
		return fmt.Errorf("invalid gender: %s", p.Gender)
	}
	if p.BloodType != nil && !validBloodTypes[*p.BloodType] {
		return fmt.Errorf("invalid blood type: %s", *p.BloodType)
	}
	return nil
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.Gender == "" {
		p.Gender = GenderMale
	}
	if err := validate(p); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if err := validate(p); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ListPatients resolves the ordering through the whitelist. An unknown
// ordering falls back to the default rather than erroring, matching
// lenient query-parameter handling elsewhere in the API.
func (s *Service) ListPatients(ctx context.Context, search, ordering string, limit, offset int) ([]*Patient, int, error) {
	orderBy, ok := orderings[ordering]
	if !ok {
		orderBy = defaultOrdering
	}
	return s.repo.List(ctx, search, orderBy, limit, offset)
}

// FullProfile assembles the patient and all linked collections. The
// appointment and clinical record lists go through the caller's scope,
// so a doctor sees only their own entries on a shared patient.
func (s *Service) FullProfile(ctx context.Context, id uuid.UUID, caller policy.Identity) (*FullProfile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	appts, err := s.sources.Appointments.ListByPatient(ctx, id, policy.ScopeFor(caller, policy.ResourceAppointment))
	if err != nil {
		return nil, err
	}
	records, err := s.sources.Records.ListByPatient(ctx, id, policy.ScopeFor(caller, policy.ResourceClinicalRecord))
	if err != nil {
		return nil, err
	}
	labOrders, err := s.sources.LabOrders.ListByPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	files, err := s.sources.Files.ListByPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	pharmacyOrders, err := s.sources.PharmacyOrders.ListByPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := &FullProfile{
		Patient:         p,
		Appointments:    appts,
		ClinicalRecords: records,
		LabOrders:       labOrders,
		MedicalFiles:    files,
		PharmacyOrders:  pharmacyOrders,
	}
	if profile.Appointments == nil {
		profile.Appointments = []*appointment.Appointment{}
	}
	if profile.ClinicalRecords == nil {
		profile.ClinicalRecords = []*clinicalrecord.ClinicalRecord{}
	}
	if profile.LabOrders == nil {
		profile.LabOrders = []*laborder.LabOrder{}
	}
	if profile.MedicalFiles == nil {
		profile.MedicalFiles = []*medicalfile.MedicalFile{}
	}
	if profile.PharmacyOrders == nil {
		profile.PharmacyOrders = []*pharmacyorder.PharmacyOrder{}
	}
	return profile, nil
}
