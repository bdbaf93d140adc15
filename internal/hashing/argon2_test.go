package hashing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netchat/netchat/internal/models"
)

// cheap parameters keep the tests fast
var testParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashVerify_RoundTrip(t *testing.T) {
	h := New(testParams)

	encoded, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := h.Verify(encoded, "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(encoded, "hunter3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_Salted(t *testing.T) {
	h := New(testParams)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify_UsesEncodedParams(t *testing.T) {
	encoded, err := New(testParams).Hash("pw")
	require.NoError(t, err)

	// a hasher configured differently still verifies with the stored parameters
	ok, err := New(DefaultParams).Verify(encoded, "pw")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_Malformed(t *testing.T) {
	h := New(testParams)
	bad := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=16$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$",
	}
	for _, encoded := range bad {
		ok, err := h.Verify(encoded, "pw")
		assert.False(t, ok, encoded)
		var he *models.HashingError
		assert.True(t, errors.As(err, &he), "expected HashingError for %q", encoded)
	}
}
