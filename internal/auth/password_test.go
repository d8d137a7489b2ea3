package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasherRoundtrip(t *testing.T) {
	hasher := NewHasher(4) // low cost keeps the test fast

	hash, err := hasher.HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, hasher.VerifyPassword("s3cret-pass", hash))
	assert.Error(t, hasher.VerifyPassword("wrong-pass", hash))
	assert.Error(t, hasher.VerifyPassword("s3cret-pass", "not-a-hash"))
}

func TestHasherDistinctHashes(t *testing.T) {
	hasher := NewHasher(4)

	h1, err := hasher.HashPassword("same")
	require.NoError(t, err)
	h2, err := hasher.HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "bcrypt salts must differ")
}
