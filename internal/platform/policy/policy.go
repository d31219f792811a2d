// Package policy decides what slice of each clinical collection a caller may
// see. Decisions are pure functions of the caller's identity and the resource
// kind; enforcement happens in the repositories, which fold the returned scope
// into their queries.
package policy

import (
	"fmt"

	"github.com/google/uuid"
)

// Resource identifies a protected collection.
type Resource string

const (
	ResourcePatient        Resource = "patient"
	ResourceAppointment    Resource = "appointment"
	ResourceClinicalRecord Resource = "clinical_record"
	ResourceMedicalFile    Resource = "medical_file"
	ResourceLabOrder       Resource = "lab_order"
	ResourceMedication     Resource = "medication"
	ResourcePharmacyOrder  Resource = "pharmacy_order"
	ResourceUser           Resource = "user"
	ResourceAuditLog       Resource = "audit_log"
)

// Identity is the minimal caller description the engine needs.
type Identity struct {
	UserID   uuid.UUID
	Role     string
	Elevated bool
}

// Scope restricts which rows of a collection are visible. The zero value is
// unrestricted. A non-nil DoctorID limits the collection to rows attributed
// to that doctor.
type Scope struct {
	DoctorID *uuid.UUID
}

// Unrestricted reports whether the scope imposes no row filter.
func (s Scope) Unrestricted() bool {
	return s.DoctorID == nil
}

// Allows reports whether a row attributed to the given doctor falls inside
// the scope. Rows without a doctor attribution pass only unrestricted scopes.
func (s Scope) Allows(doctorID *uuid.UUID) bool {
	if s.DoctorID == nil {
		return true
	}
	return doctorID != nil && *doctorID == *s.DoctorID
}

// knownResources is the closed set of collections the engine understands.
// ScopeFor panics on anything else; an unmapped resource is a programming
// error, not a request error.
var knownResources = map[Resource]bool{
	ResourcePatient:        true,
	ResourceAppointment:    true,
	ResourceClinicalRecord: true,
	ResourceMedicalFile:    true,
	ResourceLabOrder:       true,
	ResourceMedication:     true,
	ResourcePharmacyOrder:  true,
	ResourceUser:           true,
	ResourceAuditLog:       true,
}

// doctorScoped marks the collections whose rows carry a doctor attribution
// and are narrowed to the calling doctor's own rows.
var doctorScoped = map[Resource]bool{
	ResourceAppointment:    true,
	ResourceClinicalRecord: true,
}

// ScopeFor returns the row scope the caller gets on the resource.
//
// Elevated callers and admins see everything. Doctors see only their own rows
// on doctor-attributed collections. Every other role currently receives an
// unrestricted scope on every collection; write access is limited separately
// by the per-route role guards.
func ScopeFor(id Identity, r Resource) Scope {
	if !knownResources[r] {
		panic(fmt.Sprintf("policy: unknown resource %q", r))
	}

	if id.Elevated || id.Role == RoleAdmin {
		return Scope{}
	}

	if id.Role == RoleDoctor && doctorScoped[r] {
		doctorID := id.UserID
		return Scope{DoctorID: &doctorID}
	}

	return Scope{}
}

// Role names carried in accounts and tokens.
const (
	RoleAdmin        = "ADMIN"
	RoleDoctor       = "DOCTOR"
	RoleNurse        = "NURSE"
	RoleReceptionist = "RECEPTIONIST"
	RolePatient      = "PATIENT"
)

// ValidRole reports whether the given string is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist, RolePatient:
		return true
	}
	return false
}
