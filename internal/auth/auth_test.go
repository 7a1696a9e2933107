package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens, err := NewTokens("test-secret")
	require.NoError(t, err)

	token, err := tokens.GenerateToken("u1", "a@b.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateTokenRejects(t *testing.T) {
	tokens, err := NewTokens("test-secret")
	require.NoError(t, err)
	other, err := NewTokens("other-secret")
	require.NoError(t, err)

	foreign, err := other.GenerateToken("u1", "a@b.com", RoleUser)
	require.NoError(t, err)

	expired, err := NewTokens("test-secret")
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	old, err := expired.GenerateToken("u1", "a@b.com", RoleUser)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      old,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewTokensRequiresSecret(t *testing.T) {
	_, err := NewTokens("")
	assert.Error(t, err)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	assert.NoError(t, VerifyPassword("secret", hash))
	assert.ErrorIs(t, VerifyPassword("wrong", hash), ErrMismatchedPassword)

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestSessionIsAdmin(t *testing.T) {
	assert.True(t, (&SessionData{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&SessionData{Role: RoleUser}).IsAdmin())
	var s *SessionData
	assert.False(t, s.IsAdmin())
}
