package appointment

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusScheduled  = "SCHEDULED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
	StatusNoShow     = "NO_SHOW"
)

type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DateTime  time.Time `db:"date_time" json:"date_time"`
	Reason    string    `db:"reason" json:"reason"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Denormalized for list and detail responses, filled by joins.
	PatientName string `db:"-" json:"patient_name,omitempty"`
	DoctorName  string `db:"-" json:"doctor_name,omitempty"`
}
