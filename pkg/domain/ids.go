// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "healthpass/pkg/domain-errors"
)

// Patient, doctor, hospital, appointment and visit identifiers come from the
// external record store and are opaque prefixed strings (e.g. "HP-1", "H1").
// They are distinct types so the compiler prevents passing a DoctorID where a
// HospitalID is expected.
type (
	PatientID     string
	DoctorID      string
	HospitalID    string
	AppointmentID string
	VisitID       string
	OperatorID    string
)

// CredentialID identifies a single issued credential. V7 UUIDs embed the
// issuance timestamp alongside random entropy, which gives advisory
// uniqueness without a registry.
type CredentialID uuid.UUID

// NewCredentialID mints a time-ordered credential identifier.
func NewCredentialID() (CredentialID, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return CredentialID{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate credential ID")
	}
	return CredentialID(u), nil
}

// Parse functions - use at trust boundaries (handlers, wire decode).

func ParsePatientID(s string) (PatientID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "patient ID cannot be empty")
	}
	return PatientID(s), nil
}

func ParseOperatorID(s string) (OperatorID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "operator ID cannot be empty")
	}
	return OperatorID(s), nil
}

func ParseCredentialID(s string) (CredentialID, error) {
	if s == "" {
		return CredentialID{}, dErrors.New(dErrors.CodeInvalidInput, "credential ID cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return CredentialID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid credential ID format")
	}
	return CredentialID(u), nil
}

// String methods - for logging and wire encoding.

func (id PatientID) String() string     { return string(id) }
func (id DoctorID) String() string      { return string(id) }
func (id HospitalID) String() string    { return string(id) }
func (id AppointmentID) String() string { return string(id) }
func (id VisitID) String() string       { return string(id) }
func (id OperatorID) String() string    { return string(id) }
func (id CredentialID) String() string  { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id PatientID) IsNil() bool     { return id == "" }
func (id DoctorID) IsNil() bool      { return id == "" }
func (id HospitalID) IsNil() bool    { return id == "" }
func (id AppointmentID) IsNil() bool { return id == "" }
func (id VisitID) IsNil() bool       { return id == "" }
func (id OperatorID) IsNil() bool    { return id == "" }
func (id CredentialID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
