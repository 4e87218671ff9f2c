package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := JWTManager{Secret: []byte("s3cret"), Issuer: "shop"}

	token, ttl, err := m.IssueSessionToken("user-1", "admin")
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionTTL, ttl)

	claims, err := m.ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "shop", claims.Issuer)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := JWTManager{Secret: []byte("s3cret"), SessionTTL: time.Minute}

	forged, _, err := JWTManager{Secret: []byte("different")}.IssueSessionToken("user-1", "admin")
	require.NoError(t, err)
	_, err = m.ParseSessionToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := expired.SignedString(m.Secret)
	require.NoError(t, err)
	_, err = m.ParseSessionToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseSessionToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	anonymous, _, err := m.IssueSessionToken("", "user")
	require.NoError(t, err)
	_, err = m.ParseSessionToken(anonymous)
	assert.ErrorIs(t, err, ErrInvalidToken)

	otherIssuer := JWTManager{Secret: m.Secret, Issuer: "shop"}
	foreign, _, err := JWTManager{Secret: m.Secret, Issuer: "elsewhere"}.IssueSessionToken("user-1", "user")
	require.NoError(t, err)
	_, err = otherIssuer.ParseSessionToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
