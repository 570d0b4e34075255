package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestNewResetToken(t *testing.T) {
	raw, hashed, err := NewResetToken()
	require.NoError(t, err)

	assert.Len(t, raw, 64)
	assert.Equal(t, HashResetToken(raw), hashed)
	assert.NotEqual(t, raw, hashed)

	raw2, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
}
