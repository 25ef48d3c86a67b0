package security

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPairRoundTrip(t *testing.T) {
	viper.Set("jwt.secret", "test-secret")

	access, refresh, err := MakeTokenPair("user-1")
	require.NoError(t, err)

	userID, tokenType, err := ParseToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, TokenTypeAccess, tokenType)

	userID, tokenType, err = ParseToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, TokenTypeRefresh, tokenType)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	viper.Set("jwt.secret", "test-secret")

	_, _, err := ParseToken("definitely.not.ajwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	viper.Set("jwt.secret", "test-secret")

	access, err := MakeAccessToken("user-1")
	require.NoError(t, err)

	viper.Set("jwt.secret", "a-different-secret")
	defer viper.Set("jwt.secret", "test-secret")

	_, _, err = ParseToken(access)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
