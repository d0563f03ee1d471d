package credential

import (
	dErrors "healthpass/pkg/domain-errors"
)

// Permission is an atomic grant of visibility into one field group of a
// patient record. The vocabulary is closed: a token outside this set is
// never treated as granted, no matter where it came from.
type Permission string

const (
	PermViewBasicInfo         Permission = "view_basic_info"
	PermViewConditions        Permission = "view_conditions"
	PermViewMedications       Permission = "view_medications"
	PermViewAllergies         Permission = "view_allergies"
	PermViewImmunizations     Permission = "view_immunizations"
	PermViewProcedures        Permission = "view_procedures"
	PermViewVisits            Permission = "view_visits"
	PermViewEmergencyContacts Permission = "view_emergency_contacts"
	PermViewFullHistory       Permission = "view_full_history"
)

// allPermissions is the closed vocabulary in canonical order.
var allPermissions = []Permission{
	PermViewBasicInfo,
	PermViewConditions,
	PermViewMedications,
	PermViewAllergies,
	PermViewImmunizations,
	PermViewProcedures,
	PermViewVisits,
	PermViewEmergencyContacts,
	PermViewFullHistory,
}

// EmergencySet returns the fixed disclosure set embedded in emergency
// credentials. Caller-supplied permissions never influence it.
func EmergencySet() []Permission {
	return []Permission{
		PermViewBasicInfo,
		PermViewConditions,
		PermViewMedications,
		PermViewAllergies,
		PermViewEmergencyContacts,
	}
}

// AllPermissions returns a copy of the full vocabulary.
func AllPermissions() []Permission {
	return append([]Permission(nil), allPermissions...)
}

// Known reports whether p is part of the closed vocabulary.
func (p Permission) Known() bool {
	for _, known := range allPermissions {
		if p == known {
			return true
		}
	}
	return false
}

func (p Permission) String() string { return string(p) }

// ParsePermission validates a single token at a trust boundary.
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if !p.Known() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown permission: "+s)
	}
	return p, nil
}

// RequirePermissions parses tokens strictly: any unknown token fails the
// whole set. Used at construction time, where the issuer can correct the
// request.
func RequirePermissions(tokens []string) ([]Permission, error) {
	perms := make([]Permission, 0, len(tokens))
	for _, t := range tokens {
		p, err := ParsePermission(t)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeConstruction, "permission set contains unknown token")
		}
		perms = append(perms, p)
	}
	return dedupe(perms), nil
}

// FilterPermissions parses tokens leniently: unknown tokens are dropped and
// returned separately so callers can surface them as warnings. Used on the
// decode path, where the holder cannot fix the credential but must never be
// granted an unknown token.
func FilterPermissions(tokens []string) (kept []Permission, dropped []string) {
	for _, t := range tokens {
		p := Permission(t)
		if p.Known() {
			kept = append(kept, p)
		} else {
			dropped = append(dropped, t)
		}
	}
	return dedupe(kept), dropped
}

// ContainsPermission reports whether set grants p.
func ContainsPermission(set []Permission, p Permission) bool {
	for _, have := range set {
		if have == p {
			return true
		}
	}
	return false
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(perms []Permission) []Permission {
	seen := make(map[Permission]struct{}, len(perms))
	out := perms[:0]
	for _, p := range perms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
