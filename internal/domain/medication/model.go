package medication

import (
	"time"

	"github.com/google/uuid"
)

type Medication struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	Name                 string    `db:"name" json:"name"`
	GenericName          *string   `db:"generic_name" json:"generic_name,omitempty"`
	Category             string    `db:"category" json:"category"`
	Stock                int       `db:"stock" json:"stock"`
	UnitPrice            float64   `db:"unit_price" json:"unit_price"`
	Description          *string   `db:"description" json:"description,omitempty"`
	RequiresPrescription bool      `db:"requires_prescription" json:"requires_prescription"`
	IsActive             bool      `db:"is_active" json:"is_active"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}
