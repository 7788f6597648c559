package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := New("secret", time.Hour)

	token, err := svc.GenerateToken(7, "cleaner")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "cleaner", claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := New("a", time.Hour).GenerateToken(1, "customer")
	require.NoError(t, err)

	_, err = New("b", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	token, err := New("s", -time.Minute).GenerateToken(1, "customer")
	require.NoError(t, err)

	_, err = New("s", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		UserID:           1,
		Role:             "customer",
		RegisteredClaims: jwtlib.RegisteredClaims{Issuer: issuer, ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour))},
	}
	unsigned, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, claims).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = New("s", time.Hour).ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
