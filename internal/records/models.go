// Package records models the external patient record store. The credential
// core only ever reads from it: full documents feed the permission filter,
// and snapshot data feeds emergency issuance.
package records

import (
	"time"

	id "healthpass/pkg/domain"
)

// PatientRecord is the full patient document as the record store shapes it.
type PatientRecord struct {
	PatientID id.PatientID
	Basic     BasicInfo

	Conditions    []Condition
	Medications   []Medication
	Allergies     []Allergy
	Immunizations []Immunization
	Procedures    []Procedure
	Visits        []Visit
	Contacts      []Contact
}

// BasicInfo is the demographic field group.
type BasicInfo struct {
	Name        string
	DateOfBirth string
	Gender      string
	BloodType   string
}

// Condition is a diagnosed condition, flagged when it matters in an
// emergency.
type Condition struct {
	Name        string
	DiagnosedAt time.Time
	Status      string
	Critical    bool
}

// Medication is an active or past prescription.
type Medication struct {
	Name         string
	Dosage       string
	Frequency    string
	PrescribedBy string
}

// Allergy records a known allergy and its severity.
type Allergy struct {
	Substance string
	Reaction  string
	Severity  string
}

// Immunization is one administered vaccine dose.
type Immunization struct {
	Vaccine        string
	AdministeredAt time.Time
}

// Procedure is a performed medical procedure.
type Procedure struct {
	Name        string
	PerformedAt time.Time
	HospitalID  id.HospitalID
	Notes       string
}

// Visit is one hospital or clinic visit.
type Visit struct {
	VisitID    id.VisitID
	HospitalID id.HospitalID
	DoctorID   id.DoctorID
	Date       time.Time
	Reason     string
}

// Contact is someone to reach in an emergency.
type Contact struct {
	Name     string
	Relation string
	Phone    string
}

// CriticalConditionNames extracts the names of conditions flagged critical,
// in record order. Used when capturing an emergency snapshot.
func (r *PatientRecord) CriticalConditionNames() []string {
	var names []string
	for _, c := range r.Conditions {
		if c.Critical {
			names = append(names, c.Name)
		}
	}
	return names
}

// AllergySubstances extracts the substances of all known allergies.
func (r *PatientRecord) AllergySubstances() []string {
	var subs []string
	for _, a := range r.Allergies {
		subs = append(subs, a.Substance)
	}
	return subs
}
