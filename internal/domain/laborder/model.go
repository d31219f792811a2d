package laborder

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"

	PriorityNormal = "NORMAL"
	PriorityUrgent = "URGENT"
)

type LabOrder struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID    *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	TestName    string     `db:"test_name" json:"test_name"`
	Description *string    `db:"description" json:"description,omitempty"`
	Results     *string    `db:"results" json:"results,omitempty"`
	Status      string     `db:"status" json:"status"`
	Priority    string     `db:"priority" json:"priority"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`

	PatientName string `db:"-" json:"patient_name,omitempty"`
	DoctorName  string `db:"-" json:"doctor_name,omitempty"`
}
