// Package codec turns credentials into opaque strings and back. The encoding
// is authenticated encryption (XChaCha20-Poly1305) over the canonical
// credential bytes, base64url-armored so the result survives the
// alphanumeric constraints of optical-code payloads. Tampering with any
// single byte of the output makes decode fail; confidentiality alone would
// not be enough for a bearer credential.
package codec

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/chacha20poly1305"

	"healthpass/internal/credential"
	dErrors "healthpass/pkg/domain-errors"
	"healthpass/pkg/secrets"
)

// keyLabel binds the derived cipher key to this codec so the master secret
// can be reused for other purposes without key collisions.
const keyLabel = "healthpass/credential-codec/v1"

// Codec encrypts and decrypts credentials with a deployment-wide symmetric
// key. The key is injected at process start and read-only afterwards; there
// is no rotation protocol at this layer.
type Codec struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

// New derives the cipher key from the master secret and builds a codec.
func New(master []byte) (*Codec, error) {
	key, err := secrets.Derive(master, keyLabel)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not initialize cipher")
	}
	return &Codec{aead: aead}, nil
}

// Encode canonicalizes and encrypts the credential into an opaque string.
// Layout before armoring: 24-byte random nonce || ciphertext+tag.
func (c *Codec) Encode(cred *credential.Credential) (string, error) {
	plaintext, err := credential.MarshalCanonical(cred)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate nonce")
	}
	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode is the inverse of Encode. It fails cleanly with a decode_failed
// error on malformed input, a wrong key, or corrupted ciphertext; partial
// results are never returned. The second return lists unknown permission
// tokens that were dropped during parsing.
func (c *Codec) Decode(encoded string) (*credential.Credential, []string, error) {
	if encoded == "" {
		return nil, nil, dErrors.New(dErrors.CodeDecodeFailed, "encoded credential cannot be empty")
	}
	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, nil, dErrors.New(dErrors.CodeDecodeFailed, "encoded credential is not valid base64")
	}
	if len(sealed) < chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return nil, nil, dErrors.New(dErrors.CodeDecodeFailed, "encoded credential is too short")
	}
	nonce, ciphertext := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// Wrong key and corruption are indistinguishable here, on purpose.
		return nil, nil, dErrors.New(dErrors.CodeDecodeFailed, "credential could not be authenticated")
	}
	return credential.UnmarshalCanonical(plaintext)
}
