package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNewHasher_Defaults(t *testing.T) {
	h, err := NewHasher(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, h.Cost())

	_, err = NewHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)

	_, err = NewHasher(bcrypt.MinCost - 1)
	assert.Error(t, err)
}

func TestHash_RoundTrip(t *testing.T) {
	h := newTestHasher(t)

	for _, p := range []string{"secret123", "", "pässwörd", "with spaces and symbols !@#"} {
		hash, err := h.Hash(p)
		require.NoError(t, err)

		ok, err := h.Verify(p, hash)
		require.NoError(t, err)
		assert.True(t, ok, "password %q must verify", p)
	}
}

func TestHash_SaltedOutputsDifferButBothVerify(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.Hash("secret123")
	require.NoError(t, err)
	b, err := h.Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, len(b), "bcrypt output has fixed length")

	for _, hash := range []string{a, b} {
		ok, err := h.Verify("secret123", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestVerify_MismatchIsNotAnError(t *testing.T) {
	h := newTestHasher(t)
	hash, err := h.Hash("secret123")
	require.NoError(t, err)

	ok, err := h.Verify("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_MalformedHash(t *testing.T) {
	h := newTestHasher(t)

	for _, bad := range []string{"", "short", "plaintext-password-from-legacy-file-xxxxxxxxxxxxxxxxxxxxxxxxxx"} {
		ok, err := h.Verify("secret123", bad)
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrMalformedHash, "hash %q", bad)
	}
}

func TestVerify_HashFromOtherCost(t *testing.T) {
	h := newTestHasher(t)
	other, err := NewHasher(bcrypt.MinCost + 1)
	require.NoError(t, err)

	hash, err := other.Hash("secret123")
	require.NoError(t, err)

	ok, err := h.Verify("secret123", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}
