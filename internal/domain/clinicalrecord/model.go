package clinicalrecord

import (
	"time"

	"github.com/google/uuid"

	"github.com/healthtech/hms/internal/domain/medicalfile"
)

// ClinicalRecord documents one clinical encounter. The doctor reference is
// nullable so records outlive staff accounts; the appointment link is
// optional and unique per appointment.
type ClinicalRecord struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID      *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	Diagnosis     string     `db:"diagnosis" json:"diagnosis"`
	Prescription  *string    `db:"prescription" json:"prescription,omitempty"`
	Notes         string     `db:"notes" json:"notes"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`

	PatientName string                     `db:"-" json:"patient_name,omitempty"`
	DoctorName  string                     `db:"-" json:"doctor_name,omitempty"`
	Files       []*medicalfile.MedicalFile `db:"-" json:"files"`
}
