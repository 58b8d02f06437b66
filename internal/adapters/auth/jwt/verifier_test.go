package jwt

import (
	"context"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerifier_RequiresSecret(t *testing.T) {
	_, err := NewVerifier("  ")
	assert.ErrorIs(t, err, ErrSecretRequired)
}

func TestVerify_SignedToken(t *testing.T) {
	v, err := NewVerifier("s3cret")
	require.NoError(t, err)

	token, err := v.Sign("64f0c0ffee", time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "64f0c0ffee", claims.UserID)
}

func TestVerify_SubjectFallback(t *testing.T) {
	v, err := NewVerifier("s3cret")
	require.NoError(t, err)

	raw, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
		Subject:   "user-sub",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	claims, err := v.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "user-sub", claims.UserID)
}

func TestVerify_Rejects(t *testing.T) {
	v, err := NewVerifier("s3cret")
	require.NoError(t, err)
	other, err := NewVerifier("other")
	require.NoError(t, err)

	expired, err := v.Sign("u1", -time.Minute)
	require.NoError(t, err)
	wrongKey, err := other.Sign("u1", time.Hour)
	require.NoError(t, err)
	noUser, err := v.Sign("", time.Hour)
	require.NoError(t, err)
	none, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, Claims{UserID: "u1"}).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":     "",
		"garbage":   "abc.def.ghi",
		"expired":   expired,
		"wrong key": wrongKey,
		"no user":   noUser,
		"alg none":  none,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
