package medicalfile

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeLabResult    = "LAB_RESULT"
	TypeImaging      = "IMAGING"
	TypePrescription = "PRESCRIPTION"
	TypeReport       = "REPORT"
	TypeOther        = "OTHER"
)

// MedicalFile is the stored metadata of an uploaded document. FileKey is the
// blobstore key, not a client-controlled path.
type MedicalFile struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	ClinicalRecordID *uuid.UUID `db:"clinical_record_id" json:"clinical_record_id,omitempty"`
	FileKey          string     `db:"file_key" json:"file"`
	FileType         string     `db:"file_type" json:"file_type"`
	Description      string     `db:"description" json:"description"`
	UploadedBy       *uuid.UUID `db:"uploaded_by" json:"uploaded_by,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`

	UploadedByName string `db:"-" json:"uploaded_by_name,omitempty"`
}
