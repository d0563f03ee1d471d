// Package validate performs structural, temporal and heuristic checks on a
// decoded credential. It is a pure function of the credential and the clock:
// no network or database access happens here, which is what allows offline
// and emergency verification.
package validate

import (
	"fmt"
	"time"

	"healthpass/internal/credential"
)

// Verdict is the structured validation result. Callers get the full picture,
// never a bare boolean: errors block access, warnings are advisory and may
// be surfaced without blocking.
type Verdict struct {
	IsValid     bool
	IsExpired   bool
	IsAuthentic bool
	Errors      []string
	Warnings    []string
}

// Input groups what the validator considers. DroppedPermissions carries
// unknown tokens the codec discarded during parsing; they become warnings.
// Now is injected for deterministic tests; zero means wall clock.
type Input struct {
	Credential         *credential.Credential
	DroppedPermissions []string
	Now                time.Time
}

// Check validates a successfully decoded credential. IsAuthentic reflects
// that decode already succeeded (the codec authenticates the ciphertext);
// a credential that never decodes never reaches this function.
func Check(in Input) Verdict {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	v := Verdict{IsValid: true, IsAuthentic: true}
	c := in.Credential
	if c == nil {
		v.IsValid = false
		v.IsAuthentic = false
		v.Errors = append(v.Errors, "no credential")
		return v
	}

	// Rule 1: required fields.
	if c.PatientID.IsNil() {
		v.fail("missing patient ID")
	}
	if c.ID.IsNil() {
		v.fail("missing credential ID")
	}
	if len(c.Permissions) == 0 {
		v.fail("permission set is empty")
	}
	if c.ExpiresAt.IsZero() {
		v.fail("missing expiry")
	}

	// Rule 2: expiry. Inclusive at the boundary.
	if !c.ExpiresAt.IsZero() && c.Expired(now) {
		v.IsExpired = true
		v.fail("expired")
	}

	// Rule 3: format version. Old versions warn, they do not invalidate.
	if c.FormatVersion < credential.MinFormatVersion {
		v.warn(fmt.Sprintf("format version %d is older than supported minimum %d", c.FormatVersion, credential.MinFormatVersion))
	}

	for _, tok := range in.DroppedPermissions {
		v.warn("unknown permission dropped: " + tok)
	}

	applyHeuristics(&v, c, now)
	return v
}

func (v *Verdict) fail(msg string) {
	v.IsValid = false
	v.Errors = append(v.Errors, msg)
}

func (v *Verdict) warn(msg string) {
	v.Warnings = append(v.Warnings, msg)
}
