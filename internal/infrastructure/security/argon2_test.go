package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2HashAndVerify(t *testing.T) {
	t.Parallel()

	h := NewArgon2Hasher(Argon2Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})

	encoded, err := h.Hash("pw123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	assert.True(t, h.Verify("pw123", encoded))
	assert.False(t, h.Verify("wrong", encoded))
}

func TestArgon2HashesAreSalted(t *testing.T) {
	t.Parallel()

	h := NewArgon2Hasher(Argon2Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyMalformedHash(t *testing.T) {
	t.Parallel()

	h := NewArgon2Hasher(DefaultArgon2Params())

	testCases := []struct {
		name    string
		encoded string
	}{
		{name: "empty hash (oauth-only account)", encoded: ""},
		{name: "wrong segment count", encoded: "$argon2id$v=19$broken"},
		{name: "wrong version", encoded: "$argon2id$v=13$m=65536,t=3,p=2$c2FsdA$aGFzaA"},
		{name: "bad base64 salt", encoded: "$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.False(t, h.Verify("anything", tc.encoded))
		})
	}
}
