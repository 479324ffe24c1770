package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrBadAPIKey is returned when the presented key does not match.
var ErrBadAPIKey = errors.New("api key mismatch")

// APIKeyVerifier checks presented API keys against configuration. A bcrypt
// hash is preferred so the plaintext key never needs to live in the
// environment; a plaintext key is supported for development setups.
type APIKeyVerifier struct {
	plaintext string
	hash      string
}

// NewAPIKeyVerifier builds a verifier from configured values.
func NewAPIKeyVerifier(plaintext, hash string) *APIKeyVerifier {
	return &APIKeyVerifier{plaintext: plaintext, hash: hash}
}

// Configured reports whether any key material is set.
func (v *APIKeyVerifier) Configured() bool {
	return v.plaintext != "" || v.hash != ""
}

// Verify checks the presented key.
func (v *APIKeyVerifier) Verify(presented string) error {
	if presented == "" {
		return ErrBadAPIKey
	}
	if v.hash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(v.hash), []byte(presented)); err != nil {
			return ErrBadAPIKey
		}
		return nil
	}
	if v.plaintext == "" {
		return ErrBadAPIKey
	}
	if subtle.ConstantTimeCompare([]byte(v.plaintext), []byte(presented)) != 1 {
		return ErrBadAPIKey
	}
	return nil
}
