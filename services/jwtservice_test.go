package services

import (
	"storefront/config"
	"storefront/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tokens := testTokens()
	session := model.Session{UID: "u1", Email: "ada@example.com", Role: model.RoleAdmin, TokenID: NewTokenID()}

	signed, err := tokens.CreateAccessToken(session)
	require.NoError(t, err)

	claims, err := tokens.ParseAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, session.UID, claims.UserID)
	assert.Equal(t, session.Email, claims.Email)
	assert.Equal(t, session.Role, claims.Role)
	assert.Equal(t, session.TokenID, claims.TokenID)
}

func TestAccessTokenExpires(t *testing.T) {
	tokens := testTokens()
	issued := time.Unix(1_700_000_000, 0)
	tokens.now = func() time.Time { return issued }

	signed, err := tokens.CreateAccessToken(model.Session{UID: "u1", TokenID: "t1"})
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tokens.ParseAccessToken(signed)
	assert.Error(t, err)
}

func TestTokensRejectForeignIssuerAndSecret(t *testing.T) {
	tokens := testTokens()
	other := NewTokenService(config.JWTConfig{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		Issuer:        "someone-else",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})

	signed, err := other.CreateAccessToken(model.Session{UID: "u1", TokenID: "t1"})
	require.NoError(t, err)
	_, err = tokens.ParseAccessToken(signed)
	assert.Error(t, err)

	refresh, err := tokens.CreateRefreshToken("u1", "t1")
	require.NoError(t, err)
	_, err = tokens.ParseAccessToken(refresh)
	assert.Error(t, err)

	claims, err := tokens.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "t1", claims.TokenID)
}

func TestHashRefreshToken(t *testing.T) {
	refresh, err := testTokens().CreateRefreshToken("u1", "t1")
	require.NoError(t, err)

	hashed, err := HashRefreshToken(refresh)
	require.NoError(t, err)
	assert.True(t, CompareRefreshToken(hashed, refresh))
	assert.False(t, CompareRefreshToken(hashed, refresh+"x"))
}
