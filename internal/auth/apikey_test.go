package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAPIKeyVerifierPlaintext(t *testing.T) {
	verifier := NewAPIKeyVerifier("correct-key", "")

	assert.True(t, verifier.Configured())
	assert.NoError(t, verifier.Verify("correct-key"))
	assert.ErrorIs(t, verifier.Verify("wrong-key"), ErrBadAPIKey)
	assert.ErrorIs(t, verifier.Verify(""), ErrBadAPIKey)
}

func TestAPIKeyVerifierHashTakesPrecedence(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-key"), bcrypt.MinCost)
	require.NoError(t, err)

	verifier := NewAPIKeyVerifier("plaintext-ignored", string(hash))

	assert.NoError(t, verifier.Verify("hashed-key"))
	assert.ErrorIs(t, verifier.Verify("plaintext-ignored"), ErrBadAPIKey)
}

func TestAPIKeyVerifierUnconfigured(t *testing.T) {
	verifier := NewAPIKeyVerifier("", "")

	assert.False(t, verifier.Configured())
	assert.ErrorIs(t, verifier.Verify("anything"), ErrBadAPIKey)
}
