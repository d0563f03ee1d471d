package testutil

import (
	"time"

	"healthpass/internal/credential"
	"healthpass/internal/records"
	id "healthpass/pkg/domain"
)

// TestIDs provides convenient pre-generated IDs for tests.
// Use these for deterministic test data.
var TestIDs = struct {
	Patient1  id.PatientID
	Patient2  id.PatientID
	Hospital1 id.HospitalID
	Hospital2 id.HospitalID
	Doctor1   id.DoctorID
	Doctor2   id.DoctorID
	Visit1    id.VisitID
	Issuer1   id.OperatorID
}{
	Patient1:  "HP-1",
	Patient2:  "HP-2",
	Hospital1: "H1",
	Hospital2: "H2",
	Doctor1:   "D1",
	Doctor2:   "D2",
	Visit1:    "V1",
	Issuer1:   "H1",
}

// TestMasterKey is the base64 master secret shared by codec tests.
const TestMasterKey = "dGVzdC1tYXN0ZXIta2V5LWZvci11bml0LXRlc3Rz"

// CredentialBuilder provides a fluent interface for building test credentials.
type CredentialBuilder struct {
	params  credential.BuildParams
	variant credential.Variant
	vctx    credential.VisitContext
	hours   int
	snap    credential.EmergencySnapshot
}

// NewCredentialBuilder creates a CredentialBuilder with sensible defaults:
// a full credential for Patient1 with full-history access.
func NewCredentialBuilder() *CredentialBuilder {
	return &CredentialBuilder{
		variant: credential.VariantFull,
		params: credential.BuildParams{
			PatientID:   TestIDs.Patient1,
			IssuerID:    TestIDs.Issuer1,
			Permissions: []string{credential.PermViewFullHistory.String()},
		},
		hours: credential.DefaultTemporaryLifetimeHours,
		snap: credential.EmergencySnapshot{
			BloodType:          "O-",
			CriticalConditions: []string{"diabetes"},
			Allergies:          []string{"penicillin"},
			Contacts: []credential.EmergencyContact{
				{Name: "Maria Santos", Relation: "spouse", Phone: "+1-555-0100"},
			},
		},
	}
}

func (b *CredentialBuilder) Variant(v credential.Variant) *CredentialBuilder {
	b.variant = v
	return b
}

func (b *CredentialBuilder) Patient(p id.PatientID) *CredentialBuilder {
	b.params.PatientID = p
	return b
}

func (b *CredentialBuilder) Issuer(o id.OperatorID) *CredentialBuilder {
	b.params.IssuerID = o
	return b
}

func (b *CredentialBuilder) Permissions(tokens ...string) *CredentialBuilder {
	b.params.Permissions = tokens
	return b
}

func (b *CredentialBuilder) BoundToHospital(h id.HospitalID) *CredentialBuilder {
	b.params.Binding.HospitalID = h
	return b
}

func (b *CredentialBuilder) BoundToDoctor(d id.DoctorID) *CredentialBuilder {
	b.params.Binding.DoctorID = d
	return b
}

func (b *CredentialBuilder) Visit(v id.VisitID) *CredentialBuilder {
	b.vctx.VisitID = v
	return b
}

func (b *CredentialBuilder) Lifetime(d time.Duration) *CredentialBuilder {
	b.params.Lifetime = d
	return b
}

func (b *CredentialBuilder) LifetimeHours(h int) *CredentialBuilder {
	b.hours = h
	return b
}

func (b *CredentialBuilder) IssuedAt(t time.Time) *CredentialBuilder {
	b.params.Now = t
	return b
}

func (b *CredentialBuilder) Snapshot(s credential.EmergencySnapshot) *CredentialBuilder {
	b.snap = s
	return b
}

// Build constructs the credential through the production builders.
func (b *CredentialBuilder) Build() (*credential.Credential, error) {
	switch b.variant {
	case credential.VariantEmergency:
		return credential.NewEmergency(b.params, b.snap)
	case credential.VariantLimited:
		vctx := b.vctx
		if vctx.IsZero() {
			vctx.VisitID = TestIDs.Visit1
		}
		return credential.NewLimited(b.params, vctx)
	case credential.VariantTemporary:
		return credential.NewTemporary(b.params, b.hours)
	default:
		return credential.NewFull(b.params)
	}
}

// PatientRecord returns a populated record for Patient1.
func PatientRecord() *records.PatientRecord {
	return &records.PatientRecord{
		PatientID: TestIDs.Patient1,
		Basic: records.BasicInfo{
			Name:        "Jordan Reyes",
			DateOfBirth: "1984-03-12",
			Gender:      "male",
			BloodType:   "O-",
		},
		Conditions: []records.Condition{
			{Name: "diabetes", Status: "active", Critical: true},
			{Name: "seasonal rhinitis", Status: "active"},
		},
		Medications: []records.Medication{
			{Name: "metformin", Dosage: "500mg", Frequency: "2x daily", PrescribedBy: "D1"},
		},
		Allergies: []records.Allergy{
			{Substance: "penicillin", Reaction: "anaphylaxis", Severity: "severe"},
		},
		Immunizations: []records.Immunization{
			{Vaccine: "influenza"},
		},
		Procedures: []records.Procedure{
			{Name: "appendectomy", HospitalID: TestIDs.Hospital1},
		},
		Visits: []records.Visit{
			{VisitID: TestIDs.Visit1, HospitalID: TestIDs.Hospital1, DoctorID: TestIDs.Doctor1, Reason: "checkup"},
		},
		Contacts: []records.Contact{
			{Name: "Maria Santos", Relation: "spouse", Phone: "+1-555-0100"},
		},
	}
}
