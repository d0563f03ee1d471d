package credential

import (
	"time"

	id "healthpass/pkg/domain"
	dErrors "healthpass/pkg/domain-errors"
)

// Default lifetimes per variant. Anything longer than the critical-age
// heuristic window would be dead on arrival, so the full-access default sits
// exactly at that boundary.
const (
	DefaultFullLifetime      = 30 * 24 * time.Hour
	DefaultEmergencyLifetime = 30 * 24 * time.Hour
	DefaultLimitedLifetime   = 7 * 24 * time.Hour

	// DefaultTemporaryLifetimeHours is the short lifetime callers should use
	// for temporary credentials when the requester does not pick one. The
	// builder itself demands an explicit positive value.
	DefaultTemporaryLifetimeHours = 24
)

// BuildParams carries the inputs common to all four builders. Permissions
// are raw tokens and are parsed strictly: an unknown token fails
// construction instead of being silently dropped, because the issuer is
// present and can correct the request.
type BuildParams struct {
	PatientID id.PatientID
	IssuerID  id.OperatorID
	Purpose   string
	Binding   Binding

	// Lifetime overrides the variant default when positive. Ignored by
	// NewTemporary, which takes its lifetime explicitly.
	Lifetime time.Duration

	// Permissions is the caller-chosen raw token set. Ignored by
	// NewEmergency, which always grants the fixed emergency set.
	Permissions []string

	// Now is injected for deterministic tests; zero means wall clock.
	Now time.Time
}

// NewFull builds a full-access credential. The permission set is
// caller-chosen verbatim (still validated against the vocabulary) and must
// not be empty.
func NewFull(p BuildParams) (*Credential, error) {
	perms, err := RequirePermissions(p.Permissions)
	if err != nil {
		return nil, err
	}
	if len(perms) == 0 {
		return nil, dErrors.New(dErrors.CodeConstruction, "full credential requires a non-empty permission set")
	}
	return assemble(VariantFull, p, perms, lifetimeOr(p.Lifetime, DefaultFullLifetime))
}

// NewEmergency builds an emergency credential. Caller-supplied permissions
// are ignored in favor of the fixed emergency set, and the live snapshot is
// embedded so verification and use never require a database read.
func NewEmergency(p BuildParams, snap EmergencySnapshot) (*Credential, error) {
	// Emergencies override binding: any authenticated operator may invoke.
	p.Binding = Binding{}
	cred, err := assemble(VariantEmergency, p, EmergencySet(), lifetimeOr(p.Lifetime, DefaultEmergencyLifetime))
	if err != nil {
		return nil, err
	}
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = cred.IssuedAt
	}
	snap.CapturedAt = time.Unix(snap.CapturedAt.Unix(), 0).UTC()
	cred.Snapshot = &snap
	return cred, nil
}

// NewLimited builds a visit-scoped credential. At least one context
// identifier (appointment or visit) is required for audit traceability; an
// empty permission set defaults to basic info.
func NewLimited(p BuildParams, vctx VisitContext) (*Credential, error) {
	if vctx.IsZero() {
		return nil, dErrors.New(dErrors.CodeConstruction, "limited credential requires an appointment or visit ID")
	}
	perms, err := RequirePermissions(p.Permissions)
	if err != nil {
		return nil, err
	}
	if len(perms) == 0 {
		perms = []Permission{PermViewBasicInfo}
	}
	cred, err := assemble(VariantLimited, p, perms, lifetimeOr(p.Lifetime, DefaultLimitedLifetime))
	if err != nil {
		return nil, err
	}
	cred.Context = vctx
	return cred, nil
}

// NewTemporary builds a short-lived credential with an explicit lifetime in
// hours. An empty permission set defaults to basic info.
func NewTemporary(p BuildParams, lifetimeHours int) (*Credential, error) {
	if lifetimeHours <= 0 {
		return nil, dErrors.New(dErrors.CodeConstruction, "temporary credential lifetime must be positive")
	}
	perms, err := RequirePermissions(p.Permissions)
	if err != nil {
		return nil, err
	}
	if len(perms) == 0 {
		perms = []Permission{PermViewBasicInfo}
	}
	return assemble(VariantTemporary, p, perms, time.Duration(lifetimeHours)*time.Hour)
}

// assemble enforces the invariants shared by every variant.
func assemble(v Variant, p BuildParams, perms []Permission, lifetime time.Duration) (*Credential, error) {
	if p.PatientID.IsNil() {
		return nil, dErrors.New(dErrors.CodeConstruction, "patient ID cannot be empty")
	}
	if p.IssuerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeConstruction, "issuer ID cannot be empty")
	}
	if lifetime <= 0 {
		return nil, dErrors.New(dErrors.CodeConstruction, "credential lifetime must be positive")
	}

	credID, err := id.NewCredentialID()
	if err != nil {
		return nil, err
	}

	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	// Second precision keeps the canonical wire form stable across
	// encode/decode round-trips.
	issuedAt := time.Unix(now.Unix(), 0).UTC()
	expiresAt := issuedAt.Add(lifetime)
	if !expiresAt.After(issuedAt) {
		return nil, dErrors.New(dErrors.CodeConstruction, "expiry must be after issuance")
	}

	return &Credential{
		ID:            credID,
		Variant:       v,
		PatientID:     p.PatientID,
		IssuerID:      p.IssuerID,
		Purpose:       p.Purpose,
		IssuedAt:      issuedAt,
		ExpiresAt:     expiresAt,
		FormatVersion: FormatVersion,
		Permissions:   perms,
		Binding:       p.Binding,
	}, nil
}

func lifetimeOr(explicit, fallback time.Duration) time.Duration {
	if explicit > 0 {
		return explicit
	}
	return fallback
}
