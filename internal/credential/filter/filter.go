// Package filter projects a full patient record down to the field groups a
// permission set grants. The mapping is a fixed allow-list from permission
// to field group: a field group absent from the mapping is never released,
// so adding new fields to the record store cannot leak through an old
// credential.
package filter

import (
	"healthpass/internal/credential"
	"healthpass/internal/records"
	id "healthpass/pkg/domain"
)

// View is the released projection. A nil group means the credential did not
// grant it; an empty non-nil group means it was granted but the record holds
// no data for it.
type View struct {
	PatientID id.PatientID

	Basic         *records.BasicInfo
	Conditions    []records.Condition
	Medications   []records.Medication
	Allergies     []records.Allergy
	Immunizations []records.Immunization
	Procedures    []records.Procedure
	Visits        []records.Visit
	Contacts      []records.Contact
}

// Apply builds the view a permission set unlocks. Unknown permissions cannot
// occur here (the vocabulary is closed and parsing drops anything else), and
// the switch is exhaustive over that vocabulary.
func Apply(record *records.PatientRecord, perms []credential.Permission) *View {
	view := &View{PatientID: record.PatientID}
	for _, p := range perms {
		switch p {
		case credential.PermViewBasicInfo:
			basic := record.Basic
			view.Basic = &basic
		case credential.PermViewConditions:
			view.Conditions = nonNil(record.Conditions)
		case credential.PermViewMedications:
			view.Medications = nonNil(record.Medications)
		case credential.PermViewAllergies:
			view.Allergies = nonNil(record.Allergies)
		case credential.PermViewImmunizations:
			view.Immunizations = nonNil(record.Immunizations)
		case credential.PermViewProcedures:
			view.Procedures = nonNil(record.Procedures)
		case credential.PermViewVisits:
			view.Visits = nonNil(record.Visits)
		case credential.PermViewEmergencyContacts:
			view.Contacts = nonNil(record.Contacts)
		case credential.PermViewFullHistory:
			basic := record.Basic
			view.Basic = &basic
			view.Conditions = nonNil(record.Conditions)
			view.Medications = nonNil(record.Medications)
			view.Allergies = nonNil(record.Allergies)
			view.Immunizations = nonNil(record.Immunizations)
			view.Procedures = nonNil(record.Procedures)
			view.Visits = nonNil(record.Visits)
			view.Contacts = nonNil(record.Contacts)
		}
	}
	return view
}

// nonNil distinguishes "granted but empty" from "not granted" in the view.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
