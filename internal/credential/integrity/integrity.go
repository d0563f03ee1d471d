// Package integrity provides a tamper-evidence digest over the canonical
// credential bytes, independent of the encryption key. It exists for
// out-of-band cross-checking (a second channel communicating the expected
// digest); the codec's authenticated encryption remains the actual security
// boundary, this layer is advisory.
package integrity

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"healthpass/internal/credential"
)

// Hash computes the BLAKE2b-256 digest of the credential's canonical form,
// hex-encoded.
func Hash(cred *credential.Credential) (string, error) {
	raw, err := credential.MarshalCanonical(cred)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// Verify reports whether digest matches the credential's canonical form.
// Comparison is constant-time; a malformed digest simply fails.
func Verify(cred *credential.Credential, digest string) bool {
	expected, err := Hash(cred)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(digest)) == 1
}
