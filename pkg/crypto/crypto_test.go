package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("SuperSecret123!")
	require.NoError(t, err)
	require.NotEqual(t, "SuperSecret123!", hash)

	require.True(t, VerifyPassword(hash, "SuperSecret123!"))
	require.False(t, VerifyPassword(hash, "wrong-password"))
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(24)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// URL-safe alphabet only.
	require.False(t, strings.ContainsAny(token, "+/="))

	other, err := GenerateToken(24)
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}
