package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-shared-secret"

func signToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "lumendocs",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:   "u1",
		Username: "alice",
	}
}

func TestVerifyValidToken(t *testing.T) {
	v := NewVerifier(testSecret, "lumendocs")

	identity, err := v.Verify(signToken(t, testSecret, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UserID)
	assert.Equal(t, "alice", identity.Username)
}

func TestVerifyMissingToken(t *testing.T) {
	v := NewVerifier(testSecret, "lumendocs")

	_, err := v.Verify("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	v := NewVerifier(testSecret, "lumendocs")

	_, err := v.Verify(signToken(t, "other-secret", validClaims()))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpiredToken(t *testing.T) {
	v := NewVerifier(testSecret, "lumendocs")

	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	_, err := v.Verify(signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyWrongIssuer(t *testing.T) {
	v := NewVerifier(testSecret, "lumendocs")

	claims := validClaims()
	claims.Issuer = "someone-else"

	_, err := v.Verify(signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMissingUserID(t *testing.T) {
	v := NewVerifier(testSecret, "lumendocs")

	claims := validClaims()
	claims.UserID = ""

	_, err := v.Verify(signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbageToken(t *testing.T) {
	v := NewVerifier(testSecret, "lumendocs")

	_, err := v.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
