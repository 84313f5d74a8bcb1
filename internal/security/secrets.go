package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// SecretBytes is the entropy of every opaque refresh or invite secret.
const SecretBytes = 48

// GenerateSecret returns SecretBytes of crypto/rand entropy, base64url encoded
// without padding.
func GenerateSecret() (string, error) {
	b := make([]byte, SecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashSecret returns the SHA-256 of secret, hex-encoded. Only this digest is
// ever used as a storage key; the raw secret is never persisted.
func HashSecret(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(h[:])
}

// WellFormedSecret reports whether s decodes as base64url to exactly
// SecretBytes. Anything else cannot have been issued by GenerateSecret.
func WellFormedSecret(s string) bool {
	if len(s) != base64.RawURLEncoding.EncodedLen(SecretBytes) {
		return false
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil && len(b) == SecretBytes
}
