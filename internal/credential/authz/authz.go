// Package authz decides whether an operator may invoke a credential at all.
// This gate is about who is holding the scanner, not what data the
// credential unlocks; it runs after structural and temporal validation, and
// a perfectly valid credential can still be rejected here.
package authz

import (
	"healthpass/internal/credential"
	id "healthpass/pkg/domain"
	dErrors "healthpass/pkg/domain-errors"
)

// Role classifies the authenticated human operator.
type Role string

const (
	RolePatient  Role = "patient"
	RoleDoctor   Role = "doctor"
	RoleHospital Role = "hospital"
)

// ParseRole validates a role string from a token claim.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleDoctor, RoleHospital:
		return Role(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown operator role: "+s)
	}
}

// Operator is the authenticated identity presenting a credential.
type Operator struct {
	ID   id.OperatorID
	Role Role
}

// Authorize applies the gate rules in order:
//
//  1. The subject patient may always use their own credential.
//  2. Emergency credentials may be invoked by any authenticated operator;
//     emergencies override binding.
//  3. A credential bound to a hospital or doctor is usable only by a
//     matching operator; the denial names which binding failed.
//  4. An unbound credential is usable by any doctor- or hospital-role
//     operator. This is a deliberate broad-trust policy; tightening it
//     means binding at issuance, not changing this gate.
func Authorize(op Operator, cred *credential.Credential) error {
	if op.ID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "operator is not authenticated")
	}

	if op.Role == RolePatient && op.ID.String() == cred.PatientID.String() {
		return nil
	}

	if cred.Variant == credential.VariantEmergency {
		return nil
	}

	if !cred.Binding.IsZero() {
		// Either binding satisfies a credential bound to both.
		if !cred.Binding.HospitalID.IsNil() && op.Role == RoleHospital && op.ID.String() == cred.Binding.HospitalID.String() {
			return nil
		}
		if !cred.Binding.DoctorID.IsNil() && op.Role == RoleDoctor && op.ID.String() == cred.Binding.DoctorID.String() {
			return nil
		}
		if !cred.Binding.HospitalID.IsNil() {
			return dErrors.New(dErrors.CodeAuthorizationDenied,
				"credential is bound to hospital "+cred.Binding.HospitalID.String())
		}
		return dErrors.New(dErrors.CodeAuthorizationDenied,
			"credential is bound to doctor "+cred.Binding.DoctorID.String())
	}

	if op.Role == RoleDoctor || op.Role == RoleHospital {
		return nil
	}

	return dErrors.New(dErrors.CodeAuthorizationDenied, "operator may not use this credential")
}
