package credential

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	id "healthpass/pkg/domain"
	dErrors "healthpass/pkg/domain-errors"
)

// Canonical form: a deterministic JSON rendering of the credential used both
// as the cipher plaintext and as the integrity-hash input. Field order is
// fixed by the struct declaration, timestamps are unix seconds, and optional
// fields are omitted when empty, so the same credential always canonicalizes
// to the same bytes. Keys are kept short because the encrypted result has to
// fit optical-code capacity limits.

type wireCredential struct {
	V    int           `json:"v"`
	Typ  string        `json:"t"`
	ID   string        `json:"jti"`
	Sub  string        `json:"sub"`
	Iss  string        `json:"iss"`
	Pur  string        `json:"pur,omitempty"`
	Iat  int64         `json:"iat"`
	Exp  int64         `json:"exp"`
	Perm []string      `json:"perm"`
	Hos  string        `json:"hos,omitempty"`
	Doc  string        `json:"doc,omitempty"`
	Apt  string        `json:"apt,omitempty"`
	Vis  string        `json:"vis,omitempty"`
	Snap *wireSnapshot `json:"snap,omitempty"`
}

type wireSnapshot struct {
	BloodType string        `json:"bt,omitempty"`
	Cond      []string      `json:"cc,omitempty"`
	Allergies []string      `json:"al,omitempty"`
	Contacts  []wireContact `json:"ec,omitempty"`
	Captured  int64         `json:"cap"`
}

type wireContact struct {
	Name     string `json:"n"`
	Relation string `json:"r,omitempty"`
	Phone    string `json:"p,omitempty"`
}

// MarshalCanonical renders the credential into its canonical byte form.
func MarshalCanonical(c *Credential) ([]byte, error) {
	if c == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credential cannot be nil")
	}
	w := wireCredential{
		V:    c.FormatVersion,
		Typ:  c.Variant.String(),
		ID:   c.ID.String(),
		Sub:  c.PatientID.String(),
		Iss:  c.IssuerID.String(),
		Pur:  c.Purpose,
		Iat:  c.IssuedAt.Unix(),
		Exp:  c.ExpiresAt.Unix(),
		Perm: make([]string, 0, len(c.Permissions)),
		Hos:  c.Binding.HospitalID.String(),
		Doc:  c.Binding.DoctorID.String(),
		Apt:  c.Context.AppointmentID.String(),
		Vis:  c.Context.VisitID.String(),
	}
	for _, p := range c.Permissions {
		w.Perm = append(w.Perm, p.String())
	}
	if c.Snapshot != nil {
		snap := &wireSnapshot{
			BloodType: c.Snapshot.BloodType,
			Cond:      c.Snapshot.CriticalConditions,
			Allergies: c.Snapshot.Allergies,
			Captured:  c.Snapshot.CapturedAt.Unix(),
		}
		for _, ec := range c.Snapshot.Contacts {
			snap.Contacts = append(snap.Contacts, wireContact(ec))
		}
		w.Snap = snap
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not canonicalize credential")
	}
	return raw, nil
}

// UnmarshalCanonical parses canonical bytes back into a credential. Unknown
// permission tokens are dropped, never granted; they are returned separately
// so the validator can surface them as warnings. A credential whose
// permission set becomes empty after dropping fails structural validation
// downstream, it does not fail here.
func UnmarshalCanonical(raw []byte) (*Credential, []string, error) {
	var w wireCredential
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, nil, dErrors.New(dErrors.CodeDecodeFailed, "credential payload is not valid")
	}

	variant, err := ParseVariant(w.Typ)
	if err != nil {
		return nil, nil, dErrors.New(dErrors.CodeDecodeFailed, "credential payload carries an unknown variant: "+w.Typ)
	}
	credID, err := uuid.Parse(w.ID)
	if err != nil {
		return nil, nil, dErrors.New(dErrors.CodeDecodeFailed, "credential payload carries a malformed ID")
	}
	perms, dropped := FilterPermissions(w.Perm)

	c := &Credential{
		ID:            id.CredentialID(credID),
		Variant:       variant,
		PatientID:     id.PatientID(w.Sub),
		IssuerID:      id.OperatorID(w.Iss),
		Purpose:       w.Pur,
		IssuedAt:      time.Unix(w.Iat, 0).UTC(),
		ExpiresAt:     time.Unix(w.Exp, 0).UTC(),
		FormatVersion: w.V,
		Permissions:   perms,
		Binding: Binding{
			HospitalID: id.HospitalID(w.Hos),
			DoctorID:   id.DoctorID(w.Doc),
		},
		Context: VisitContext{
			AppointmentID: id.AppointmentID(w.Apt),
			VisitID:       id.VisitID(w.Vis),
		},
	}
	if w.Snap != nil {
		snap := &EmergencySnapshot{
			BloodType:          w.Snap.BloodType,
			CriticalConditions: w.Snap.Cond,
			Allergies:          w.Snap.Allergies,
			CapturedAt:         time.Unix(w.Snap.Captured, 0).UTC(),
		}
		for _, ec := range w.Snap.Contacts {
			snap.Contacts = append(snap.Contacts, EmergencyContact(ec))
		}
		c.Snapshot = snap
	}
	return c, dropped, nil
}
