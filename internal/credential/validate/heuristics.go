package validate

import (
	"time"

	"healthpass/internal/credential"
)

// Heuristic thresholds. These are soft signals layered on top of the hard
// structural and expiry rules, with one exception: a credential older than
// the critical age is force-invalidated even if its own expiry field claims
// otherwise, which bounds the damage of an absurdly long expiry.
const (
	agingThreshold       = 7 * 24 * time.Hour
	criticalAgeThreshold = 30 * 24 * time.Hour
	broadPermissionCount = 6
	expiryImminentWindow = time.Hour
)

// applyHeuristics adds advisory warnings, and the one critical age check,
// to an otherwise complete verdict. Only called for decoded credentials.
func applyHeuristics(v *Verdict, c *credential.Credential, now time.Time) {
	age := c.Age(now)

	if age > criticalAgeThreshold {
		v.fail("credential issued more than 30 days ago")
	} else if age > agingThreshold {
		v.warn("aging credential")
	}

	if len(c.Permissions) > broadPermissionCount {
		v.warn("unusually broad permissions")
	}

	if remaining := c.ExpiresAt.Sub(now); remaining > 0 && remaining < expiryImminentWindow {
		v.warn("credential expires within the hour")
	}
}
