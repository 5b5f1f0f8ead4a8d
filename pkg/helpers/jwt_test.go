package helpers_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/motormarket/user-service/pkg/helpers"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := helpers.NewTokenManager("test-secret", 0)

	tok, err := tm.Generate("u42")
	require.NoError(t, err)

	claims, err := tm.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, "u42", claims.UserID)
	// zero TTL tokens carry no expiry claim
	require.Nil(t, claims.ExpiresAt)
}

func TestTokenWithTTLCarriesExpiry(t *testing.T) {
	tm := helpers.NewTokenManager("test-secret", time.Hour)

	tok, err := tm.Generate("u42")
	require.NoError(t, err)

	claims, err := tm.Parse(tok)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	require.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	tm := helpers.NewTokenManager("test-secret", 0)
	other := helpers.NewTokenManager("other-secret", 0)

	tok, err := tm.Generate("u42")
	require.NoError(t, err)

	_, err = other.Parse(tok)
	require.Error(t, err)
}

func TestTokenRejectsGarbage(t *testing.T) {
	tm := helpers.NewTokenManager("test-secret", 0)
	_, err := tm.Parse("not.a.token")
	require.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	digest, err := helpers.HashPassword("password1")
	require.NoError(t, err)
	require.NotEqual(t, "password1", digest)

	require.True(t, helpers.CompareHashAndPassword(digest, "password1"))
	require.False(t, helpers.CompareHashAndPassword(digest, "password2"))
	require.False(t, helpers.CompareHashAndPassword("", "password1"))
}
