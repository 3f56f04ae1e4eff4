package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager(t *testing.T, secret string) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(secret)
	require.NoError(t, err)
	return m
}

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	_, err := NewJWTManager("")
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	m := newTestJWTManager(t, "secret")

	token, err := m.GenerateAccessJWT(42, time.Hour)
	require.NoError(t, err)

	userID, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestAccessToken_Claims(t *testing.T) {
	m := newTestJWTManager(t, "secret")
	token, err := m.GenerateAccessJWT(7, time.Hour)
	require.NoError(t, err)

	claims := &AccessTokenCustomClaims{}
	_, _, err = new(jwt.Parser).ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.Id)
	assert.Equal(t, claims.IssuedAt+int64(time.Hour.Seconds()), claims.ExpiresAt)
}

func TestAccessToken_ZeroTTLIsExpired(t *testing.T) {
	m := newTestJWTManager(t, "secret")
	token, err := m.GenerateAccessJWT(1, 0)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredJWTToken)
}

func TestAccessToken_PastTTLIsExpired(t *testing.T) {
	m := newTestJWTManager(t, "secret")
	token, err := m.GenerateAccessJWT(1, -time.Minute)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredJWTToken)
}

func TestAccessToken_ForeignSecret(t *testing.T) {
	issuer := newTestJWTManager(t, "secret-a")
	validator := newTestJWTManager(t, "secret-b")

	token, err := issuer.GenerateAccessJWT(1, time.Hour)
	require.NoError(t, err)

	_, err = validator.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidJWTSignature)
}

func TestAccessToken_Malformed(t *testing.T) {
	m := newTestJWTManager(t, "secret")

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := m.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrMalformedJWTToken, "token %q", token)
	}
}

func TestAccessToken_RejectsOtherAlgorithms(t *testing.T) {
	m := newTestJWTManager(t, "secret")
	claims := &AccessTokenCustomClaims{
		UserID:         1,
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrMalformedJWTToken)
}

func TestAccessToken_MissingClaims(t *testing.T) {
	m := newTestJWTManager(t, "secret")

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessTokenCustomClaims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(noUser)
	assert.ErrorIs(t, err, ErrMalformedJWTToken)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessTokenCustomClaims{UserID: 1}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(noExpiry)
	assert.ErrorIs(t, err, ErrMalformedJWTToken)
}

func TestGenerateAccessJWT_RejectsInvalidUser(t *testing.T) {
	m := newTestJWTManager(t, "secret")
	_, err := m.GenerateAccessJWT(0, time.Hour)
	assert.Error(t, err)
}
