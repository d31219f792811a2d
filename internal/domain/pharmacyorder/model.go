package pharmacyorder

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "PENDING"
	StatusDispensed = "DISPENSED"
	StatusCancelled = "CANCELLED"
)

type PharmacyOrder struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID     *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	MedicationID uuid.UUID  `db:"medication_id" json:"medication_id"`
	Quantity     int        `db:"quantity" json:"quantity"`
	Dosage       string     `db:"dosage" json:"dosage"`
	Status       string     `db:"status" json:"status"`
	Notes        *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`

	PatientName    string `db:"-" json:"patient_name,omitempty"`
	DoctorName     string `db:"-" json:"doctor_name,omitempty"`
	MedicationName string `db:"-" json:"medication_name,omitempty"`
}
