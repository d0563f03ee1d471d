// Package secrets handles generation and derivation of symmetric key material.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/hkdf"

	dErrors "healthpass/pkg/domain-errors"
)

// KeySize is the byte length of derived symmetric keys.
const KeySize = 32

// Generate creates a cryptographically secure random master secret.
// Returns a base64-encoded string suitable for the HEALTHPASS_MASTER_KEY
// environment variable.
func Generate() (string, error) {
	buf := make([]byte, KeySize)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate secret")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ParseMaster decodes a base64 master secret from configuration.
func ParseMaster(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "master secret cannot be empty")
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "master secret is not valid base64")
	}
	if len(raw) < 16 {
		return nil, dErrors.New(dErrors.CodeValidation, "master secret must be at least 16 bytes")
	}
	return raw, nil
}

// Derive expands the master secret into a purpose-bound key using
// HKDF-SHA256. Distinct labels yield independent keys, so the cipher key
// never doubles as anything else.
func Derive(master []byte, label string) ([]byte, error) {
	if len(master) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "master secret cannot be empty")
	}
	r := hkdf.New(sha256.New, master, nil, []byte(label))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not derive key")
	}
	return key, nil
}
