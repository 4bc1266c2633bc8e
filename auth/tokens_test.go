package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Issue("user-123", "a@b.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)

	_, err = uuid.Parse(claims.ID)
	assert.NoError(t, err, "jti should be a uuid")

	expiresIn := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, time.Hour.Seconds(), expiresIn.Seconds(), 60, "tokens are valid for one hour")
}

func TestVerify_RejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret")

	for _, token := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestVerify_RejectsForgedSignature(t *testing.T) {
	issued, err := NewTokenService("secret-one").Issue("user-123", "a@b.com")
	require.NoError(t, err)

	_, err = NewTokenService("secret-two").Verify(issued)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsExpired(t *testing.T) {
	svc := NewTokenService("test-secret")

	// Hand-craft an already-expired token with the same secret.
	claims := Claims{
		UserID: "user-123",
		Email:  "a@b.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired and malformed are indistinguishable")
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewTokenService("test-secret")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-123"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
