// Package credential defines the portable access-credential model: a scoped,
// time-boxed grant of access to a patient's medical data, small enough to
// travel inside a scannable optical code and verifiable without any network
// round-trip.
//
// There is deliberately no revocation list and no single-use tracking: a
// credential remains usable for any number of presentations until it
// expires. Verification is a stateless bearer check, which is what allows
// offline and emergency use; the trade-off is that a compromised credential
// cannot be invalidated mid-lifetime.
package credential

import (
	"time"

	id "healthpass/pkg/domain"
	dErrors "healthpass/pkg/domain-errors"
)

// Variant is the credential kind. The set is closed; adding a variant
// requires a format version bump so old verifiers fail loudly instead of
// guessing.
type Variant string

const (
	VariantFull      Variant = "full"
	VariantEmergency Variant = "emergency"
	VariantLimited   Variant = "limited"
	VariantTemporary Variant = "temporary"
)

// ParseVariant validates a variant tag from the wire.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantFull, VariantEmergency, VariantLimited, VariantTemporary:
		return Variant(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown credential variant: "+s)
	}
}

func (v Variant) String() string { return string(v) }

// Format versions. A decoded credential older than MinFormatVersion is
// flagged with a warning during validation, not rejected.
const (
	FormatVersion    = 1
	MinFormatVersion = 1
)

// Binding optionally ties a credential to a specific hospital or doctor.
// An unbound credential can be invoked by any doctor- or hospital-role
// operator; the authorization gate enforces the match when a binding is set.
type Binding struct {
	HospitalID id.HospitalID
	DoctorID   id.DoctorID
}

// IsZero reports whether no binding was set.
func (b Binding) IsZero() bool {
	return b.HospitalID.IsNil() && b.DoctorID.IsNil()
}

// VisitContext carries the appointment or visit a limited credential was
// issued for. At least one identifier is required for audit traceability.
type VisitContext struct {
	AppointmentID id.AppointmentID
	VisitID       id.VisitID
}

// IsZero reports whether neither context identifier was set.
func (c VisitContext) IsZero() bool {
	return c.AppointmentID.IsNil() && c.VisitID.IsNil()
}

// EmergencyContact is one person to reach when the patient cannot speak for
// themselves.
type EmergencyContact struct {
	Name     string
	Relation string
	Phone    string
}

// EmergencySnapshot is the self-contained emergency disclosure captured at
// issuance time. It travels inside the credential so emergency use never
// depends on a live database read.
type EmergencySnapshot struct {
	BloodType          string
	CriticalConditions []string
	Allergies          []string
	Contacts           []EmergencyContact
	CapturedAt         time.Time
}

// Credential is the central entity: an immutable, scoped, time-boxed grant.
// Instances are only created through the builder functions, which enforce
// each variant's invariants; nothing mutates a credential after issuance.
type Credential struct {
	ID            id.CredentialID
	Variant       Variant
	PatientID     id.PatientID
	IssuerID      id.OperatorID
	Purpose       string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	FormatVersion int
	Permissions   []Permission

	// Binding is honored for full, limited and temporary credentials.
	// Emergency credentials carry no binding by construction.
	Binding Binding

	// Context is only set on limited credentials.
	Context VisitContext

	// Snapshot is only set on emergency credentials.
	Snapshot *EmergencySnapshot
}

// Expired reports whether the credential's lifetime has passed at the given
// instant. Expiry is inclusive: at exactly ExpiresAt the credential is dead.
func (c *Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Age returns how long ago the credential was issued.
func (c *Credential) Age(now time.Time) time.Duration {
	return now.Sub(c.IssuedAt)
}

// Grants reports whether the credential's permission set contains p.
func (c *Credential) Grants(p Permission) bool {
	return ContainsPermission(c.Permissions, p)
}
