package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveVerifyRoundTrip(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	hash := Derive("correct horse battery staple", salt)
	assert.Len(t, hash, keyBytes*2, "hash should be hex of the derived key")
	assert.True(t, Verify("correct horse battery staple", salt, hash))
	assert.False(t, Verify("correct horse battery stapl", salt, hash))
	assert.False(t, Verify("", salt, hash))
}

func TestDeriveIsDeterministic(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	assert.Equal(t, Derive("pw", salt), Derive("pw", salt))
}

func TestSaltChangesHash(t *testing.T) {
	s1, err := NewSalt()
	require.NoError(t, err)
	s2, err := NewSalt()
	require.NoError(t, err)
	require.NotEqual(t, s1, s2)
	assert.NotEqual(t, Derive("same password", s1), Derive("same password", s2))
}

func TestNewSaltUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 256)
	for i := 0; i < 256; i++ {
		s, err := NewSalt()
		require.NoError(t, err)
		assert.Len(t, s, saltBytes*2)
		_, dup := seen[s]
		require.False(t, dup, "salt repeated after %d draws", i)
		seen[s] = struct{}{}
	}
}
