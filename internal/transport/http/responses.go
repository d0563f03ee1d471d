package httptransport

import (
	"time"

	"healthpass/internal/credential"
	"healthpass/internal/credential/filter"
	"healthpass/internal/records"
)

// Wire DTOs for released data. Domain models stay JSON-free; the shape the
// outside world sees is pinned here.

type viewResponse struct {
	PatientID     string                 `json:"patient_id"`
	Basic         *basicInfoResponse     `json:"basic_info,omitempty"`
	Conditions    []conditionResponse    `json:"conditions,omitempty"`
	Medications   []medicationResponse   `json:"medications,omitempty"`
	Allergies     []allergyResponse      `json:"allergies,omitempty"`
	Immunizations []immunizationResponse `json:"immunizations,omitempty"`
	Procedures    []procedureResponse    `json:"procedures,omitempty"`
	Visits        []visitResponse        `json:"visits,omitempty"`
	Contacts      []contactResponse      `json:"emergency_contacts,omitempty"`
}

type basicInfoResponse struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Gender      string `json:"gender,omitempty"`
	BloodType   string `json:"blood_type,omitempty"`
}

type conditionResponse struct {
	Name        string `json:"name"`
	DiagnosedAt string `json:"diagnosed_at,omitempty"`
	Status      string `json:"status,omitempty"`
	Critical    bool   `json:"critical,omitempty"`
}

type medicationResponse struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage,omitempty"`
	Frequency    string `json:"frequency,omitempty"`
	PrescribedBy string `json:"prescribed_by,omitempty"`
}

type allergyResponse struct {
	Substance string `json:"substance"`
	Reaction  string `json:"reaction,omitempty"`
	Severity  string `json:"severity,omitempty"`
}

type immunizationResponse struct {
	Vaccine        string `json:"vaccine"`
	AdministeredAt string `json:"administered_at,omitempty"`
}

type procedureResponse struct {
	Name        string `json:"name"`
	PerformedAt string `json:"performed_at,omitempty"`
	HospitalID  string `json:"hospital_id,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type visitResponse struct {
	VisitID    string `json:"visit_id"`
	HospitalID string `json:"hospital_id,omitempty"`
	DoctorID   string `json:"doctor_id,omitempty"`
	Date       string `json:"date,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

type contactResponse struct {
	Name     string `json:"name"`
	Relation string `json:"relation,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type snapshotResponse struct {
	BloodType          string            `json:"blood_type,omitempty"`
	CriticalConditions []string          `json:"critical_conditions,omitempty"`
	Allergies          []string          `json:"allergies,omitempty"`
	Contacts           []contactResponse `json:"contacts,omitempty"`
	CapturedAt         string            `json:"captured_at"`
}

func toViewResponse(v *filter.View) *viewResponse {
	if v == nil {
		return nil
	}
	out := &viewResponse{PatientID: v.PatientID.String()}
	if v.Basic != nil {
		out.Basic = &basicInfoResponse{
			Name:        v.Basic.Name,
			DateOfBirth: v.Basic.DateOfBirth,
			Gender:      v.Basic.Gender,
			BloodType:   v.Basic.BloodType,
		}
	}
	for _, c := range v.Conditions {
		out.Conditions = append(out.Conditions, conditionResponse{
			Name:        c.Name,
			DiagnosedAt: formatDate(c.DiagnosedAt),
			Status:      c.Status,
			Critical:    c.Critical,
		})
	}
	for _, m := range v.Medications {
		out.Medications = append(out.Medications, medicationResponse{
			Name:         m.Name,
			Dosage:       m.Dosage,
			Frequency:    m.Frequency,
			PrescribedBy: m.PrescribedBy,
		})
	}
	for _, a := range v.Allergies {
		out.Allergies = append(out.Allergies, allergyResponse{
			Substance: a.Substance,
			Reaction:  a.Reaction,
			Severity:  a.Severity,
		})
	}
	for _, i := range v.Immunizations {
		out.Immunizations = append(out.Immunizations, immunizationResponse{
			Vaccine:        i.Vaccine,
			AdministeredAt: formatDate(i.AdministeredAt),
		})
	}
	for _, p := range v.Procedures {
		out.Procedures = append(out.Procedures, procedureResponse{
			Name:        p.Name,
			PerformedAt: formatDate(p.PerformedAt),
			HospitalID:  p.HospitalID.String(),
			Notes:       p.Notes,
		})
	}
	for _, visit := range v.Visits {
		out.Visits = append(out.Visits, visitResponse{
			VisitID:    visit.VisitID.String(),
			HospitalID: visit.HospitalID.String(),
			DoctorID:   visit.DoctorID.String(),
			Date:       formatDate(visit.Date),
			Reason:     visit.Reason,
		})
	}
	out.Contacts = toContactResponses(v.Contacts)
	return out
}

func toSnapshotResponse(s *credential.EmergencySnapshot) *snapshotResponse {
	if s == nil {
		return nil
	}
	out := &snapshotResponse{
		BloodType:          s.BloodType,
		CriticalConditions: s.CriticalConditions,
		Allergies:          s.Allergies,
		CapturedAt:         s.CapturedAt.UTC().Format(time.RFC3339),
	}
	for _, c := range s.Contacts {
		out.Contacts = append(out.Contacts, contactResponse(c))
	}
	return out
}

func toContactResponses(contacts []records.Contact) []contactResponse {
	var out []contactResponse
	for _, c := range contacts {
		out = append(out, contactResponse(c))
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
