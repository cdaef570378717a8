package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(4)

	hash, err := hasher.Hash("sekretne1")
	require.NoError(t, err)
	assert.NotEqual(t, "sekretne1", hash)

	assert.NoError(t, hasher.Compare(hash, "sekretne1"))
	assert.Error(t, hasher.Compare(hash, "innehaslo"))
}

func TestHashRejectsShortPassword(t *testing.T) {
	hasher := NewBcryptHasher(4)
	_, err := hasher.Hash("krotkie")
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(32)
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := GenerateToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerateTokenDefaultsLength(t *testing.T) {
	tok, err := GenerateToken(0)
	require.NoError(t, err)
	assert.Len(t, tok, 64)
}
