package auth

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	require.NoError(t, err)

	token, err := svc.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, ok := svc.Resolve(token)
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)
}

func TestResolveWrongSecret(t *testing.T) {
	issuer, err := NewTokenService("secret-a")
	require.NoError(t, err)
	verifier, err := NewTokenService("secret-b")
	require.NoError(t, err)

	token, err := issuer.Issue(42)
	require.NoError(t, err)

	_, ok := verifier.Resolve(token)
	assert.False(t, ok, "token signed with a different secret must not resolve")
}

func TestResolveExpiredToken(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	require.NoError(t, err)

	// Hand-craft an already expired token with the same secret.
	past := time.Now().Add(-time.Hour)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(42, 10),
		IssuedAt:  jwt.NewNumericDate(past.Add(-TokenTTL)),
		ExpiresAt: jwt.NewNumericDate(past),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, ok := svc.Resolve(expired)
	assert.False(t, ok, "expired token must not resolve")
}

func TestResolveGarbage(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	require.NoError(t, err)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, ok := svc.Resolve(token)
		assert.False(t, ok, "token %q must not resolve", token)
	}
}

func TestNewTokenServiceEmptySecret(t *testing.T) {
	_, err := NewTokenService("")
	assert.ErrorIs(t, err, ErrInvalidSecret)
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotContains(t, hash, "correct horse", "hash must not embed the raw password")

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	_, err := VerifyPassword("pw", "not-a-phc-string")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
